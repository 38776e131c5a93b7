package model

import "time"

// LearnedPreferences are soft preference clusters inferred from the profiles
// a user right-swiped. Replaced wholesale on every recompute; never merged.
type LearnedPreferences struct {
	UserID          int64     `json:"user_id"`
	AgeMin          int       `json:"age_min"`
	AgeMax          int       `json:"age_max"`
	MaxDistanceKM   float64   `json:"max_distance_km"`
	BodyTypes       []string  `json:"body_types"`
	Styles          []string  `json:"styles"`
	Interests       []string  `json:"interests"`
	LikedAnalyzed   int       `json:"liked_analyzed"`
	ConfidenceLevel float64   `json:"confidence_level"`
	LearnedAt       time.Time `json:"learned_at"`
}

// Confident reports whether the preferences carry any inferred signal at all.
func (p LearnedPreferences) Confident() bool {
	return p.ConfidenceLevel > 0
}
