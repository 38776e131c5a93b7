package model

import (
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/enums"
)

// Signal is an immutable recorded interaction between two users.
// Signals are append-only; they are never updated or deleted by the engine.
type Signal struct {
	ID           string           `json:"id"`
	ActorUserID  int64            `json:"actor_user_id"`
	TargetUserID int64            `json:"target_user_id"`
	Type         enums.SignalType `json:"type"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
