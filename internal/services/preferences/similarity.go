package preferences

import (
	"github.com/ivankudzin/matchrank/internal/domain/model"
	"github.com/ivankudzin/matchrank/internal/domain/rules"
)

// Similarity weights. Components the preferences never learned are excluded
// from the denominator instead of scoring zero.
const (
	similarityAgeWeight      = 0.35
	similarityDistanceWeight = 0.25
	similarityBodyWeight     = 0.15
	similarityStyleWeight    = 0.10
	similarityInterestWeight = 0.15
)

// Similarity scores how well a candidate matches the viewer's learned
// preferences, in [0,1]. The raw component score is linearly damped toward
// the neutral 0.5 by the preference confidence, so thin preference data
// barely moves the needle.
func Similarity(prefs model.LearnedPreferences, viewer, candidate model.User) float64 {
	if !prefs.Confident() {
		return 0.5
	}

	var earned, possible float64

	if prefs.AgeMax > 0 {
		possible += similarityAgeWeight
		if candidate.Age >= prefs.AgeMin && candidate.Age <= prefs.AgeMax {
			earned += similarityAgeWeight
		}
	}

	if prefs.MaxDistanceKM > 0 &&
		viewer.Lat != nil && viewer.Lon != nil &&
		candidate.Lat != nil && candidate.Lon != nil {
		possible += similarityDistanceWeight
		dist := rules.HaversineKM(*viewer.Lat, *viewer.Lon, *candidate.Lat, *candidate.Lon)
		if dist <= prefs.MaxDistanceKM {
			earned += similarityDistanceWeight
		}
	}

	if len(prefs.BodyTypes) > 0 {
		possible += similarityBodyWeight
		if containsTag(prefs.BodyTypes, candidate.BodyType) {
			earned += similarityBodyWeight
		}
	}

	if len(prefs.Styles) > 0 {
		possible += similarityStyleWeight
		if containsTag(prefs.Styles, candidate.Style) {
			earned += similarityStyleWeight
		}
	}

	if len(prefs.Interests) > 0 {
		possible += similarityInterestWeight
		earned += similarityInterestWeight * interestOverlap(prefs.Interests, candidate.Interests)
	}

	if possible == 0 {
		return rules.DampSimilarity(0.5, prefs.ConfidenceLevel)
	}

	return rules.DampSimilarity(earned/possible, prefs.ConfidenceLevel)
}

func containsTag(tags []string, tag string) bool {
	if tag == "" {
		return false
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func interestOverlap(preferred, actual []string) float64 {
	if len(preferred) == 0 || len(actual) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(actual))
	for _, tag := range actual {
		set[tag] = struct{}{}
	}
	matched := 0
	for _, tag := range preferred {
		if _, ok := set[tag]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(preferred))
}
