package calculator

import "math"

// CorpusGrowth returns the corpus after years of monthly contributions at the
// given annual return, compounded monthly:
//
//	FV = PV*(1+r)^n + PMT*((1+r)^n - 1)/r,  r = pct/12/100, n = years*12
//
// For years <= 0 or a zero return it degrades to initial + monthly*12*years,
// so negative years reduce the corpus linearly.
func CorpusGrowth(initial, monthly float64, years int, annualReturnPct float64) float64 {
	if years <= 0 || annualReturnPct == 0 {
		return initial + monthly*12*float64(years)
	}
	r := annualReturnPct / 12 / 100
	n := float64(years * 12)
	growth := math.Pow(1+r, n)
	return initial*growth + monthly*(growth-1)/r
}
