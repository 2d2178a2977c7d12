package recommend

import (
	"log"
	"sort"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/model"
)

// GoalDuration is the holding period assumed for SIP-based goals.
const GoalDuration = "More than 1 year"

// GoalShortlist is how many funds ForGoal returns.
const GoalShortlist = 5

// Result is a ranked shortlist plus the fallbacks taken to build it.
type Result struct {
	Funds []model.Fund `json:"funds"`
	// Category is the risk category actually applied.
	Category         model.RiskCategory `json:"risk_category"`
	CategoryFallback bool               `json:"category_fallback"`
	// DurationFallback is set when the duration label had no rule and
	// duration eligibility was skipped.
	DurationFallback bool `json:"duration_fallback"`
}

// Recommend filters the catalog for a user and orders the survivors best first.
// Filters run in this order: risk inclusion, affordability, duration
// eligibility, then the stable sort and de-duplication by fund name.
// An empty result is valid. The catalog is not modified.
func Recommend(tables *assumptions.Tables, catalog []model.Fund, risk model.RiskCategory, amount float64, duration string) Result {
	cat, fellBack := tables.ResolveCategory(risk)
	admitted := make(map[string]bool)
	for _, c := range tables.AdmittedRisks(cat) {
		admitted[string(c)] = true
	}

	// Step 1-2: risk inclusion and affordability.
	funds := make([]model.Fund, 0, len(catalog))
	for _, f := range catalog {
		if !admitted[f.RiskProfile] {
			continue
		}
		if f.MinInvestment > amount {
			continue
		}
		funds = append(funds, f)
	}

	// Step 3: duration eligibility.
	funds, skipped := filterDuration(tables, funds, duration)

	// Step 4-5: rank, then keep the first row per fund name.
	sort.SliceStable(funds, func(i, j int) bool { return better(funds[i], funds[j]) })
	return Result{
		Funds:            dedupe(funds),
		Category:         cat,
		CategoryFallback: fellBack,
		DurationFallback: skipped,
	}
}

// Rank is Recommend without the fallback report.
func Rank(tables *assumptions.Tables, catalog []model.Fund, risk model.RiskCategory, amount float64, duration string) []model.Fund {
	return Recommend(tables, catalog, risk, amount, duration).Funds
}

// ForGoal shortlists funds for a monthly SIP over a long horizon.
func ForGoal(tables *assumptions.Tables, catalog []model.Fund, risk model.RiskCategory, sip float64) []model.Fund {
	funds := Rank(tables, catalog, risk, sip, GoalDuration)
	if len(funds) > GoalShortlist {
		funds = funds[:GoalShortlist]
	}
	return funds
}

// filterDuration applies the duration rule. skipped reports that no rule
// matched the label and funds were returned unfiltered.
func filterDuration(tables *assumptions.Tables, funds []model.Fund, duration string) (out []model.Fund, skipped bool) {
	key, ok := tables.DurationKey(duration)
	if !ok {
		log.Printf("[WARN] unknown duration %q, skipping duration eligibility", duration)
		return funds, true
	}
	rule, ok := tables.DurationRule(key)
	if !ok {
		log.Printf("[WARN] no eligibility rule for duration key %q", key)
		return funds, true
	}
	durations := set(rule.Durations)
	types := set(rule.Types)
	categories := set(rule.Categories)

	out = funds[:0]
	for _, f := range funds {
		if len(durations) > 0 && !durations[f.Duration] {
			continue
		}
		if !types[f.Type] {
			continue
		}
		if len(categories) > 0 && !categories[f.Category] {
			continue
		}
		out = append(out, f)
	}
	return out, false
}

// better reports whether a ranks ahead of b: rating desc, 5y desc, 3y desc,
// expense ratio asc. Full ties keep catalog order through the stable sort.
func better(a, b model.Fund) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if a.Return5Y != b.Return5Y {
		return a.Return5Y > b.Return5Y
	}
	if a.Return3Y != b.Return3Y {
		return a.Return3Y > b.Return3Y
	}
	return a.ExpenseRatio < b.ExpenseRatio
}

func dedupe(funds []model.Fund) []model.Fund {
	seen := make(map[string]bool, len(funds))
	out := funds[:0]
	for _, f := range funds {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out
}

func set(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, s := range list {
		m[s] = true
	}
	return m
}
