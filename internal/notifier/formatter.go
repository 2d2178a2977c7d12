package notifier

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"RoboAdvisor/internal/model"
)

const currency = money.INR

// Rupees formats an amount as Indian rupees, rounded to paise.
func Rupees(amount float64) string {
	cur := money.GetCurrency(currency)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// GoalSubject is the email subject line for a saved goal.
func GoalSubject(rec *model.GoalRecord) string {
	return fmt.Sprintf("Your goal plan %s", rec.GoalID)
}

// FormatGoalSummary formats a saved goal and its shortlist as a plain-text email.
func FormatGoalSummary(rec *model.GoalRecord, funds []model.Fund) string {
	in, p := rec.Input, rec.Projection
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Goal %s | %s\n\n", rec.GoalID, rec.CreatedAt.Format("2006-01-02")))

	b.WriteString("Your plan\n")
	b.WriteString(fmt.Sprintf("  Starting corpus: %s\n", Rupees(in.Corpus)))
	b.WriteString(fmt.Sprintf("  Monthly SIP: %s\n", Rupees(in.MonthlySIP)))
	b.WriteString(fmt.Sprintf("  Horizon: %d years\n", in.HorizonYears))
	b.WriteString(fmt.Sprintf("  Risk category: %s\n\n", p.Category))

	b.WriteString("Projected corpus\n")
	b.WriteString(fmt.Sprintf("  Conservative: %s\n", Rupees(p.Conservative)))
	b.WriteString(fmt.Sprintf("  Expected: %s (at %.1f%% p.a.)\n", Rupees(p.Expected), p.AdjustedReturn))
	b.WriteString(fmt.Sprintf("  Best case: %s\n", Rupees(p.BestCase)))
	b.WriteString(fmt.Sprintf("  Confidence: %s (%d%%)\n", p.Confidence, p.ConfidencePercentage))
	if p.MeanReversionApplied {
		b.WriteString(fmt.Sprintf("\nRecent returns (%.1f%%) are well above the long-run average (%.1f%%), "+
			"so the expected case assumes %.1f%%.\n", p.RecentReturn, p.BaseReturn, p.AdjustedReturn))
	}

	if len(funds) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatRecommendations(funds))
	}

	b.WriteString("\nProjections are estimates based on historical category averages, not guarantees.\n")
	return b.String()
}

// FormatRecommendations formats a fund shortlist.
func FormatRecommendations(funds []model.Fund) string {
	var b strings.Builder
	b.WriteString("Suggested funds\n")
	for i, f := range funds {
		b.WriteString(fmt.Sprintf("  %d. %s (%s, %s)\n", i+1, f.Name, f.Category, f.RiskProfile))
		b.WriteString(fmt.Sprintf("     Rating %d | 5Y %.1f%% | 3Y %.1f%% | expense %.2f%% | min %s\n",
			f.Rating, f.Return5Y, f.Return3Y, f.ExpenseRatio, Rupees(f.MinInvestment)))
	}
	return b.String()
}
