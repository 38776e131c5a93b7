package model

import (
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
)

// HeatingState is the decayed view of a user's most recent heating
// activation. HeatLevel already has read-time decay applied.
type HeatingState struct {
	UserID           int64                `json:"user_id"`
	Trigger          enums.HeatingTrigger `json:"trigger,omitempty"`
	HeatLevel        float64              `json:"heat_level"`
	IsHeated         bool                 `json:"is_heated"`
	TriggeredAt      time.Time            `json:"triggered_at,omitempty"`
	ExpiresAt        time.Time            `json:"expires_at,omitempty"`
	ActivationsToday int                  `json:"activations_today"`
}
