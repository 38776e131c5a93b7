package model

import "time"

// BehaviorProfile is the rolling statistical summary derived from a user's
// most recent signals. It is replaced wholesale on every refresh.
type BehaviorProfile struct {
	UserID             int64      `json:"user_id"`
	RightSwipes        int        `json:"right_swipes"`
	LeftSwipes         int        `json:"left_swipes"`
	SwipeRightRate     float64    `json:"swipe_right_rate"`
	AvgViewDurationMS  float64    `json:"avg_view_duration_ms"`
	Matches            int        `json:"matches"`
	MatchRate          float64    `json:"match_rate"`
	MessagesSent       int        `json:"messages_sent"`
	MessagesReplied    int        `json:"messages_replied"`
	ResponseRate       float64    `json:"response_rate"`
	PaidChats          int        `json:"paid_chats"`
	Calls              int        `json:"calls"`
	Meetings           int        `json:"meetings"`
	GiftsSent          int        `json:"gifts_sent"`
	PaidInteractions   int        `json:"paid_interactions"`
	SignalsInWindow    int        `json:"signals_in_window"`
	LastActiveAt       *time.Time `json:"last_active_at,omitempty"`
	RecomputedAt       time.Time  `json:"recomputed_at"`
	HasLearnedPrefs    bool       `json:"has_learned_prefs"`
}

func (p BehaviorProfile) TotalSwipes() int {
	return p.RightSwipes + p.LeftSwipes
}
