package calculator

import "log"

const (
	// ReversionThreshold is how far (percentage points) the recent return may
	// exceed the base return before the expected return is trimmed.
	ReversionThreshold = 5.0
	// ReversionCut is the fixed downward adjustment in percentage points.
	ReversionCut = 1.0
)

// ApplyMeanReversion trims baseReturn by ReversionCut when the recent 1-year
// return is strictly above baseReturn+ReversionThreshold. It never adjusts upward.
func ApplyMeanReversion(baseReturn, recentOneYear float64) float64 {
	if recentOneYear > baseReturn+ReversionThreshold {
		adjusted := baseReturn - ReversionCut
		log.Printf("[INFO] mean reversion: recent 1y %.1f%% > %.1f%% + %.1f, expected return %.1f%% -> %.1f%%",
			recentOneYear, baseReturn, ReversionThreshold, baseReturn, adjusted)
		return adjusted
	}
	return baseReturn
}
