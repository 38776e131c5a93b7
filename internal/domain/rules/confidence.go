package rules

// PreferenceConfidenceBase is the number of analyzed right-swipes at which
// learned preferences reach full confidence.
const PreferenceConfidenceBase = 100

func PreferenceConfidence(likedAnalyzed int) float64 {
	if likedAnalyzed <= 0 {
		return 0
	}
	confidence := float64(likedAnalyzed) / float64(PreferenceConfidenceBase)
	if confidence > 1 {
		return 1
	}
	return confidence
}

// DampSimilarity blends a raw similarity with the neutral 0.5 midpoint in
// proportion to confidence. Zero confidence always yields neutral.
func DampSimilarity(raw, confidence float64) float64 {
	raw = ClampRate(raw)
	confidence = ClampRate(confidence)
	return raw*confidence + 0.5*(1-confidence)
}
