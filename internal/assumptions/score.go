package assumptions

import "RoboAdvisor/internal/model"

// CategoryForScore maps a questionnaire total to a risk category.
// ok is false when the total falls outside every band.
func (t *Tables) CategoryForScore(total int) (model.RiskCategory, bool) {
	for _, b := range t.scoreBands {
		if total >= b.Min && total <= b.Max {
			return b.Category, true
		}
	}
	return "", false
}

// ScoreAnswers sums per-question option scores and maps the total.
func (t *Tables) ScoreAnswers(answers []int) (total int, cat model.RiskCategory, ok bool) {
	for _, a := range answers {
		total += a
	}
	cat, ok = t.CategoryForScore(total)
	return total, cat, ok
}
