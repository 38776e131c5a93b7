package rules

import (
	"time"

	"github.com/ivankudzin/matchrank/internal/domain/model"
)

// BaseScore is the heuristic compatibility of a pair before any behavior
// data: age proximity, distance, and how complete the candidate's profile
// looks.
func BaseScore(viewer, candidate model.User) float64 {
	age := ageProximityScore(viewer.Age, candidate.Age)
	dist := distanceScore(viewer, candidate)
	completeness := completenessScore(candidate)

	return ClampScore(0.4*age + 0.3*dist + 0.3*completeness)
}

func ageProximityScore(viewerAge, candidateAge int) float64 {
	if viewerAge <= 0 || candidateAge <= 0 {
		return 50
	}
	diff := viewerAge - candidateAge
	if diff < 0 {
		diff = -diff
	}
	return ClampScore(100 - float64(diff)*5)
}

func distanceScore(viewer, candidate model.User) float64 {
	if viewer.Lat == nil || viewer.Lon == nil || candidate.Lat == nil || candidate.Lon == nil {
		return 50
	}

	km := HaversineKM(*viewer.Lat, *viewer.Lon, *candidate.Lat, *candidate.Lon)
	switch {
	case km <= 5:
		return 100
	case km <= 25:
		return 80
	case km <= 100:
		return 60
	case km <= 500:
		return 40
	default:
		return 20
	}
}

func completenessScore(u model.User) float64 {
	photos := u.PhotoCount
	if photos > 3 {
		photos = 3
	}
	interests := len(u.Interests)
	if interests > 3 {
		interests = 3
	}

	score := float64(photos) * 15
	if u.HasBio {
		score += 25
	}
	score += float64(interests) * 10

	return ClampScore(score)
}

// BehaviorScore summarizes how a candidate behaves toward others: response
// rate, match conversion, activity recency, and paid-interaction history.
func BehaviorScore(p model.BehaviorProfile, now time.Time) float64 {
	paid := float64(p.PaidInteractions) / 10
	if paid > 1 {
		paid = 1
	}

	score := 35*p.ResponseRate +
		35*p.MatchRate +
		0.15*RecencyScore(p.LastActiveAt, now) +
		15*paid

	return ClampScore(score)
}
