package projection

import (
	"errors"
	"fmt"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/calculator"
	"RoboAdvisor/internal/model"
)

// ErrInvalidInput is returned by ValidateGoalInput.
var ErrInvalidInput = errors.New("invalid goal input")

// Engine computes three-scenario goal projections from the assumption tables.
type Engine struct {
	Tables *assumptions.Tables
}

// NewEngine creates an Engine over the given tables.
func NewEngine(tables *assumptions.Tables) *Engine {
	return &Engine{Tables: tables}
}

// ValidateGoalInput rejects plans the engine must not be called with. The
// engine does not re-check; callers run this first.
func ValidateGoalInput(in model.GoalInput) error {
	switch {
	case in.Corpus < 0:
		return fmt.Errorf("%w: corpus must not be negative", ErrInvalidInput)
	case in.MonthlySIP < 0:
		return fmt.Errorf("%w: monthly contribution must not be negative", ErrInvalidInput)
	case in.Corpus == 0 && in.MonthlySIP == 0:
		return fmt.Errorf("%w: either corpus or monthly contribution must be greater than 0", ErrInvalidInput)
	case in.HorizonYears < 1:
		return fmt.Errorf("%w: horizon must be at least 1 year", ErrInvalidInput)
	}
	return nil
}

// Calculate projects the goal under conservative, expected and best-case
// returns. recentOneYear overrides the table's recent market return when
// non-nil. Only the expected leg is mean-reversion adjusted, so Conservative
// can exceed Expected.
func (e *Engine) Calculate(in model.GoalInput, recentOneYear *float64) model.ProjectionResult {
	cat, fellBack := e.Tables.ResolveCategory(in.RiskCategory)
	returns := e.Tables.Returns(cat)

	recent := e.Tables.RecentOneYear(cat)
	source := model.RecentReturnDefault
	if recentOneYear != nil {
		recent = *recentOneYear
		source = model.RecentReturnCaller
	}

	adjusted := calculator.ApplyMeanReversion(returns.Expected, recent)

	volatility := e.Tables.Volatility(cat)
	confidence := calculator.ConfidenceScore(volatility, calculator.MatureFundAge)

	return model.ProjectionResult{
		Conservative:         calculator.CorpusGrowth(in.Corpus, in.MonthlySIP, in.HorizonYears, returns.Conservative),
		Expected:             calculator.CorpusGrowth(in.Corpus, in.MonthlySIP, in.HorizonYears, adjusted),
		BestCase:             calculator.CorpusGrowth(in.Corpus, in.MonthlySIP, in.HorizonYears, returns.BestCase),
		BaseReturn:           returns.Expected,
		AdjustedReturn:       adjusted,
		RecentReturn:         recent,
		RecentReturnSource:   source,
		Confidence:           confidence,
		ConfidencePercentage: calculator.ConfidencePercentage(confidence),
		Volatility:           volatility,
		MeanReversionApplied: adjusted != returns.Expected,
		Category:             cat,
		CategoryFallback:     fellBack,
	}
}

// ScenarioReturns lists the annual return used for each leg, in display order.
func ScenarioReturns(tables *assumptions.Tables, res model.ProjectionResult) []Scenario {
	r := tables.Returns(res.Category)
	return []Scenario{
		{Name: "Conservative", AnnualReturn: r.Conservative, Corpus: res.Conservative},
		{Name: "Expected", AnnualReturn: res.AdjustedReturn, Corpus: res.Expected},
		{Name: "Best Case", AnnualReturn: r.BestCase, Corpus: res.BestCase},
	}
}

// Scenario is one leg of a projection breakdown.
type Scenario struct {
	Name         string  `json:"name"`
	AnnualReturn float64 `json:"annual_return"`
	Corpus       float64 `json:"corpus"`
}
