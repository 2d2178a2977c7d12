package model

// RiskCategory is the user's (or a fund's) risk label, least to most aggressive.
type RiskCategory string

const (
	LowRisk      RiskCategory = "Low Risk"
	ModerateRisk RiskCategory = "Moderate Risk"
	MediumRisk   RiskCategory = "Medium Risk"
	HighRisk     RiskCategory = "High Risk"
)

// RiskCategories lists every category in ascending order of aggressiveness.
var RiskCategories = []RiskCategory{LowRisk, ModerateRisk, MediumRisk, HighRisk}

// Valid reports whether c is one of the four known categories.
func (c RiskCategory) Valid() bool {
	for _, k := range RiskCategories {
		if c == k {
			return true
		}
	}
	return false
}

// Rank is c's position in RiskCategories, or -1 for an unknown label.
func (c RiskCategory) Rank() int {
	for i, k := range RiskCategories {
		if c == k {
			return i
		}
	}
	return -1
}
