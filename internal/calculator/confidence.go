package calculator

import "RoboAdvisor/internal/model"

// MatureFundAge is the fund age assumed for goal-level confidence, where no
// specific fund is involved.
const MatureFundAge = 10

// Bands maps a minimum combined score to a confidence label, highest first.
var Bands = []struct {
	MinScore float64
	Label    string
}{
	{2.5, model.ConfidenceHigh},
	{1.5, model.ConfidenceMedium},
}

var percentages = map[string]int{
	model.ConfidenceHigh:   70,
	model.ConfidenceMedium: 50,
	model.ConfidenceLow:    25,
}

func volatilityScore(volatilityPct float64) float64 {
	switch {
	case volatilityPct <= 5.0:
		return 3
	case volatilityPct <= 10.0:
		return 2
	default:
		return 1
	}
}

func ageScore(fundAgeYears int) float64 {
	switch {
	case fundAgeYears >= 10:
		return 3
	case fundAgeYears >= 5:
		return 2
	default:
		return 1
	}
}

// CombinedScore weights the volatility sub-score at 0.7 and the age sub-score at 0.3.
func CombinedScore(volatilityPct float64, fundAgeYears int) float64 {
	return volatilityScore(volatilityPct)*0.7 + ageScore(fundAgeYears)*0.3
}

// ConfidenceScore labels a projection High, Medium or Low.
func ConfidenceScore(volatilityPct float64, fundAgeYears int) string {
	combined := CombinedScore(volatilityPct, fundAgeYears)
	for _, b := range Bands {
		if combined >= b.MinScore {
			return b.Label
		}
	}
	return model.ConfidenceLow
}

// ConfidencePercentage is the display percentage for a label; unknown labels get 50.
func ConfidencePercentage(label string) int {
	if p, ok := percentages[label]; ok {
		return p
	}
	return 50
}
