package model

import "time"

const (
	AccountStatusActive    = "active"
	AccountStatusInactive  = "inactive"
	AccountStatusSuspended = "suspended"
)

// User is the engine's read view of the external user/profile store. Only
// behavior- and safety-relevant attributes are surfaced; demographic
// attributes that ranking is forbidden to use are never loaded.
type User struct {
	ID            int64      `json:"id"`
	Age           int        `json:"age"`
	CityID        string     `json:"city_id"`
	Lat           *float64   `json:"lat,omitempty"`
	Lon           *float64   `json:"lon,omitempty"`
	PhotoCount    int        `json:"photo_count"`
	HasBio        bool       `json:"has_bio"`
	BodyType      string     `json:"body_type"`
	Style         string     `json:"style"`
	Interests     []string   `json:"interests"`
	AccountStatus string     `json:"account_status"`
	ShadowBanned  bool       `json:"shadow_banned"`
	IsRoyal       bool       `json:"is_royal"`
	CreatedAt     time.Time  `json:"created_at"`
	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
}

func (u User) Active() bool {
	return u.AccountStatus == AccountStatusActive
}
