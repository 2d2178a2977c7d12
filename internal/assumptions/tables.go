package assumptions

import (
	"fmt"
	"log"
	"sort"

	"RoboAdvisor/internal/model"
)

// FallbackCategory is used whenever a risk label is not in the tables.
const FallbackCategory = model.MediumRisk

// Returns holds the annual return assumptions (%) for one risk category.
type Returns struct {
	Conservative float64 `yaml:"conservative"`
	Expected     float64 `yaml:"expected"`
	BestCase     float64 `yaml:"best_case"`
}

// DurationRule restricts which funds are suitable for a holding period.
// An empty Categories list means no category restriction.
type DurationRule struct {
	Durations  []string `yaml:"durations"`
	Types      []string `yaml:"types"`
	Categories []string `yaml:"categories"`
}

// ScoreBand maps an inclusive questionnaire score range to a category.
type ScoreBand struct {
	Min      int                `yaml:"min"`
	Max      int                `yaml:"max"`
	Category model.RiskCategory `yaml:"category"`
}

// Tables is the immutable set of lookup tables shared by all engines.
// Build it once with Default or Load and pass the pointer around.
type Tables struct {
	returns       map[model.RiskCategory]Returns
	volatility    map[model.RiskCategory]float64
	recentOneYear map[model.RiskCategory]float64
	hierarchy     map[model.RiskCategory][]model.RiskCategory
	durationKeys  map[string]string
	durationRules map[string]DurationRule
	scoreBands    []ScoreBand
	baselineAsOf  string
}

// Default returns the built-in tables, calibrated on 10-year rolling averages
// of Indian mutual fund categories as of 2025-Q4.
func Default() *Tables {
	return &Tables{
		returns: map[model.RiskCategory]Returns{
			model.LowRisk:      {Conservative: 5.4, Expected: 6.0, BestCase: 6.6},
			model.ModerateRisk: {Conservative: 7.2, Expected: 8.0, BestCase: 8.8},
			model.MediumRisk:   {Conservative: 8.1, Expected: 9.0, BestCase: 9.9},
			model.HighRisk:     {Conservative: 10.8, Expected: 12.0, BestCase: 13.2},
		},
		volatility: map[model.RiskCategory]float64{
			model.LowRisk:      3.5,
			model.ModerateRisk: 5.5,
			model.MediumRisk:   7.5,
			model.HighRisk:     13.5,
		},
		recentOneYear: map[model.RiskCategory]float64{
			model.LowRisk:      6.2,  // low duration bond index
			model.ModerateRisk: 10.5, // 50:50 hybrid
			model.MediumRisk:   14.8, // large cap
			model.HighRisk:     18.2, // midcap
		},
		hierarchy: map[model.RiskCategory][]model.RiskCategory{
			model.HighRisk:     {model.HighRisk, model.MediumRisk, model.ModerateRisk, model.LowRisk},
			model.MediumRisk:   {model.MediumRisk, model.ModerateRisk, model.LowRisk},
			model.ModerateRisk: {model.ModerateRisk, model.LowRisk},
			model.LowRisk:      {model.LowRisk},
		},
		durationKeys: map[string]string{
			"Less than 6 months": "< 6 months",
			"6 months to 1 year": "6 months to 1 year",
			"More than 1 year":   "> 1 year",
		},
		durationRules: map[string]DurationRule{
			"< 6 months": {
				Durations:  []string{"< 6 months"},
				Types:      []string{model.FundTypeDebt, model.FundTypeHybrid},
				Categories: []string{"Liquid", "Ultra Short Duration", "Short Duration Debt"},
			},
			"6 months to 1 year": {
				Durations: []string{"6 months to 1 year", "< 6 months"},
				Types:     []string{model.FundTypeDebt, model.FundTypeHybrid},
			},
			"> 1 year": {
				Durations: []string{"> 1 year", "6 months to 1 year", "< 6 months"},
				Types:     []string{model.FundTypeDebt, model.FundTypeHybrid, model.FundTypeEquity, model.FundTypeIndexETF},
			},
		},
		scoreBands: []ScoreBand{
			{Min: 13, Max: 18, Category: model.LowRisk},
			{Min: 19, Max: 22, Category: model.ModerateRisk},
			{Min: 23, Max: 28, Category: model.MediumRisk},
			{Min: 29, Max: 45, Category: model.HighRisk},
		},
		baselineAsOf: "2025-Q4",
	}
}

// Validate checks that every risk category has exactly one entry in each
// per-category table and that the fallback category is present.
func (t *Tables) Validate() error {
	for _, c := range model.RiskCategories {
		if _, ok := t.returns[c]; !ok {
			return fmt.Errorf("returns table missing %q", c)
		}
		if _, ok := t.volatility[c]; !ok {
			return fmt.Errorf("volatility table missing %q", c)
		}
		if _, ok := t.recentOneYear[c]; !ok {
			return fmt.Errorf("recent 1y return table missing %q", c)
		}
		if _, ok := t.hierarchy[c]; !ok {
			return fmt.Errorf("risk hierarchy missing %q", c)
		}
		if r := t.returns[c]; r.Conservative <= 0 || r.Expected <= 0 || r.BestCase <= 0 {
			return fmt.Errorf("returns for %q must be positive, got %+v", c, r)
		}
		if err := t.validateHierarchy(c); err != nil {
			return err
		}
	}
	for _, m := range []int{len(t.returns), len(t.volatility), len(t.recentOneYear), len(t.hierarchy)} {
		if m != len(model.RiskCategories) {
			return fmt.Errorf("per-category table has %d entries, want %d", m, len(model.RiskCategories))
		}
	}
	for label, key := range t.durationKeys {
		if _, ok := t.durationRules[key]; !ok {
			return fmt.Errorf("duration %q maps to %q which has no rule", label, key)
		}
	}
	return nil
}

// validateHierarchy checks that c admits itself and only known categories
// that are no more aggressive than c.
func (t *Tables) validateHierarchy(c model.RiskCategory) error {
	self := false
	for _, a := range t.hierarchy[c] {
		if !a.Valid() {
			return fmt.Errorf("risk hierarchy for %q admits unknown category %q", c, a)
		}
		if a.Rank() > c.Rank() {
			return fmt.Errorf("risk hierarchy for %q admits riskier %q", c, a)
		}
		if a == c {
			self = true
		}
	}
	if !self {
		return fmt.Errorf("risk hierarchy for %q must include itself", c)
	}
	return nil
}

// ResolveCategory maps a label to a known category. Unknown labels resolve to
// FallbackCategory with fellBack set, and the substitution is logged.
func (t *Tables) ResolveCategory(label model.RiskCategory) (cat model.RiskCategory, fellBack bool) {
	if _, ok := t.returns[label]; ok {
		return label, false
	}
	log.Printf("[WARN] unknown risk category %q, using %q", label, FallbackCategory)
	return FallbackCategory, true
}

// Returns gives the return assumptions for a category (resolved first).
func (t *Tables) Returns(label model.RiskCategory) Returns {
	c, _ := t.ResolveCategory(label)
	return t.returns[c]
}

// Volatility gives the historical volatility (%) for a category.
func (t *Tables) Volatility(label model.RiskCategory) float64 {
	c, _ := t.ResolveCategory(label)
	return t.volatility[c]
}

// RecentOneYear gives the canonical recent 1-year market return (%) for a category.
func (t *Tables) RecentOneYear(label model.RiskCategory) float64 {
	c, _ := t.ResolveCategory(label)
	return t.recentOneYear[c]
}

// AdmittedRisks lists the fund risk labels a user of this category may see:
// the category itself plus every less aggressive one.
func (t *Tables) AdmittedRisks(label model.RiskCategory) []model.RiskCategory {
	c, _ := t.ResolveCategory(label)
	return append([]model.RiskCategory(nil), t.hierarchy[c]...)
}

// DurationKey maps a user-facing duration label to its internal key.
func (t *Tables) DurationKey(label string) (string, bool) {
	k, ok := t.durationKeys[label]
	return k, ok
}

// DurationRule returns the eligibility rule for an internal duration key.
func (t *Tables) DurationRule(key string) (DurationRule, bool) {
	r, ok := t.durationRules[key]
	if !ok {
		return DurationRule{}, false
	}
	return DurationRule{
		Durations:  append([]string(nil), r.Durations...),
		Types:      append([]string(nil), r.Types...),
		Categories: append([]string(nil), r.Categories...),
	}, true
}

// DurationLabels lists the user-facing duration labels.
func (t *Tables) DurationLabels() []string {
	out := make([]string, 0, len(t.durationKeys))
	for _, l := range []string{"Less than 6 months", "6 months to 1 year", "More than 1 year"} {
		if _, ok := t.durationKeys[l]; ok {
			out = append(out, l)
		}
	}
	var extra []string
	for l := range t.durationKeys {
		if !contains(out, l) {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// BaselineAsOf is the calibration date of the return tables.
func (t *Tables) BaselineAsOf() string { return t.baselineAsOf }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
