package dto

type ActivateHeatingRequest struct {
	UserID  int64  `json:"user_id"`
	Trigger string `json:"trigger"`
}

type DeactivateHeatingResponse struct {
	Expired int64 `json:"expired"`
}
