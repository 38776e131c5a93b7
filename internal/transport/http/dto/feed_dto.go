package dto

type FeedItemResponse struct {
	CandidateID int64   `json:"candidate_id"`
	FinalScore  float64 `json:"final_score"`
	Tier        string  `json:"tier"`
}

type FeedResponse struct {
	Items      []FeedItemResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}
