package model

import "time"

// Confidence labels for a projection.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// RecentReturnSource tells where the 1-year return used for mean reversion came from.
type RecentReturnSource string

const (
	RecentReturnCaller  RecentReturnSource = "caller"
	RecentReturnDefault RecentReturnSource = "table_default"
)

// GoalInput is the user's savings plan.
type GoalInput struct {
	Corpus       float64      `json:"corpus"`
	MonthlySIP   float64      `json:"sip"`
	HorizonYears int          `json:"horizon"`
	RiskCategory RiskCategory `json:"risk_category"`
}

// ProjectionResult is the output of the projection engine.
// Conservative <= Expected does not hold once mean reversion has fired.
type ProjectionResult struct {
	Conservative         float64            `json:"conservative_projection"`
	Expected             float64            `json:"expected_projection"`
	BestCase             float64            `json:"best_case_projection"`
	BaseReturn           float64            `json:"base_return"`
	AdjustedReturn       float64            `json:"adjusted_return"`
	RecentReturn         float64            `json:"recent_1y_return"`
	RecentReturnSource   RecentReturnSource `json:"recent_1y_return_source"`
	Confidence           string             `json:"confidence"`
	ConfidencePercentage int                `json:"confidence_percentage"`
	Volatility           float64            `json:"volatility"`
	MeanReversionApplied bool               `json:"mean_reversion_applied"`
	Category             RiskCategory       `json:"category"`
	CategoryFallback     bool               `json:"category_fallback"`
}

// GoalStatus is the lifecycle state of a saved goal.
type GoalStatus string

const (
	StatusSaved     GoalStatus = "saved"
	StatusEmailSent GoalStatus = "email_sent"
	StatusRevisited GoalStatus = "revisited"
)

func (s GoalStatus) rank() int {
	switch s {
	case StatusEmailSent:
		return 1
	case StatusRevisited:
		return 2
	default:
		return 0
	}
}

// Advance returns the status after event happens to a goal currently in s.
// Status only moves forward: saved -> email_sent -> revisited, and saved can
// jump straight to revisited. An older event never demotes a later status.
func (s GoalStatus) Advance(event GoalStatus) GoalStatus {
	if event.rank() > s.rank() {
		return event
	}
	return s
}

// GoalRecord is the persisted goal.
type GoalRecord struct {
	GoalID      string           `json:"goal_id"`
	OwnerID     string           `json:"owner_id,omitempty"`
	Input       GoalInput        `json:"input"`
	Projection  ProjectionResult `json:"projection"`
	Status      GoalStatus       `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	EmailSentAt *time.Time       `json:"email_sent_at,omitempty"`
	RevisitedAt *time.Time       `json:"revisited_at,omitempty"`
}

// Mark applies event at time at. It re-stamps the event's own timestamp
// even when the status does not change.
func (r *GoalRecord) Mark(event GoalStatus, at time.Time) {
	r.Status = r.Status.Advance(event)
	r.UpdatedAt = at
	switch event {
	case StatusEmailSent:
		r.EmailSentAt = &at
	case StatusRevisited:
		r.RevisitedAt = &at
	}
}
