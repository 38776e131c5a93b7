package rules

import "time"

// RecencyScore is a step function of how long ago the candidate was active.
func RecencyScore(lastActiveAt *time.Time, now time.Time) float64 {
	if lastActiveAt == nil || lastActiveAt.IsZero() {
		return 10
	}

	elapsed := now.Sub(lastActiveAt.UTC())
	switch {
	case elapsed <= time.Hour:
		return 100
	case elapsed <= 24*time.Hour:
		return 90
	case elapsed <= 7*24*time.Hour:
		return 70
	case elapsed <= 30*24*time.Hour:
		return 40
	default:
		return 10
	}
}

// PopularityScore is a step function of inbound likes over the trailing 30 days.
func PopularityScore(inboundLikes30d int) float64 {
	switch {
	case inboundLikes30d >= 50:
		return 100
	case inboundLikes30d >= 20:
		return 80
	case inboundLikes30d >= 10:
		return 60
	case inboundLikes30d >= 3:
		return 40
	case inboundLikes30d >= 1:
		return 20
	default:
		return 10
	}
}

func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func ClampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
