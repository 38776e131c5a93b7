package enums

type Tier string

const (
	TierRoyal            Tier = "ROYAL"
	TierHighEngagement   Tier = "HIGH_ENGAGEMENT"
	TierHighMonetization Tier = "HIGH_MONETIZATION"
	TierStandard         Tier = "STANDARD"
	TierLowPopularity    Tier = "LOW_POPULARITY"
	TierNewUser          Tier = "NEW_USER"
)

func AllTiers() []Tier {
	return []Tier{
		TierRoyal,
		TierHighEngagement,
		TierHighMonetization,
		TierStandard,
		TierLowPopularity,
		TierNewUser,
	}
}
