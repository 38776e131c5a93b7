package dto

type ViewPayload struct {
	DurationMS int64 `json:"duration_ms"`
}

type SwipePayload struct {
	Direction      string `json:"direction"`
	ViewDurationMS int64  `json:"view_duration_ms"`
}

type PaidPayload struct {
	Kind string `json:"kind"`
}

// RecordSignalRequest accepts either a raw signal type or exactly one of
// the convenience payloads that derive the type server-side.
type RecordSignalRequest struct {
	TargetUserID int64          `json:"target_user_id"`
	Type         string         `json:"type,omitempty"`
	View         *ViewPayload   `json:"view,omitempty"`
	Swipe        *SwipePayload  `json:"swipe,omitempty"`
	Paid         *PaidPayload   `json:"paid,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type RecordSignalResponse struct {
	SignalID    string `json:"signal_id"`
	Type        string `json:"type"`
	MutualMatch bool   `json:"mutual_match"`
}
