package model

import (
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
)

// RankingScore is the per-(viewer, candidate) score breakdown. It is a
// read-time projection and is never persisted.
type RankingScore struct {
	ViewerUserID      int64      `json:"viewer_user_id"`
	CandidateUserID   int64      `json:"candidate_user_id"`
	BaseScore         float64    `json:"base_score"`
	BehaviorScore     float64    `json:"behavior_score"`
	SimilarityScore   float64    `json:"similarity_score"`
	RecencyScore      float64    `json:"recency_score"`
	PopularityScore   float64    `json:"popularity_score"`
	WeightedScore     float64    `json:"weighted_score"`
	Tier              enums.Tier `json:"tier"`
	TierMultiplier    float64    `json:"tier_multiplier"`
	HeatingMultiplier float64    `json:"heating_multiplier"`
	FinalScore        float64    `json:"final_score"`
	ScoredAt          time.Time  `json:"scored_at"`
}
