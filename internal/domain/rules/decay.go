package rules

import "time"

// DecayedHeat applies linear time decay to a heat level. The state is fully
// cold once the expiry passes, regardless of remaining level.
func DecayedHeat(initial float64, triggeredAt, expiresAt, now time.Time, decayPerMinute float64) float64 {
	if now.Before(triggeredAt) {
		now = triggeredAt
	}
	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		return 0
	}

	elapsedMinutes := now.Sub(triggeredAt).Minutes()
	level := initial - elapsedMinutes*decayPerMinute
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
