package store

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"RoboAdvisor/internal/model"
)

// ErrNotFound is returned when no goal or registration has the requested id.
var ErrNotFound = errors.New("not found")

// DefaultRegistrationLimit applies when LatestRegistrations is given a
// non-positive limit.
const DefaultRegistrationLimit = 50

// topCities caps Overview.TopCities.
const topCities = 10

// Analytics aggregates the saved goals.
type Analytics struct {
	TotalGoals     int                        `json:"total_goals"`
	ByStatus       map[model.GoalStatus]int   `json:"by_status"`
	ByConfidence   map[string]int             `json:"by_confidence"`
	ByRiskCategory map[model.RiskCategory]int `json:"by_risk_category"`
	AvgCorpus      float64                    `json:"avg_corpus"`
	AvgSIP         float64                    `json:"avg_sip"`
	AvgHorizon     float64                    `json:"avg_horizon"`
	AvgExpected    float64                    `json:"avg_expected_projection"`
}

func newAnalytics() *Analytics {
	return &Analytics{
		ByStatus:       make(map[model.GoalStatus]int),
		ByConfidence:   make(map[string]int),
		ByRiskCategory: make(map[model.RiskCategory]int),
	}
}

// CityCount is one row of the registration city breakdown.
type CityCount struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Funnel holds the registration conversion percentages, rounded to one
// decimal place. Both are 0 when the denominator is 0.
type Funnel struct {
	RegisteredOfCompleted float64 `json:"pct_registered_of_completed"`
	ViewedOfRegistered    float64 `json:"pct_viewed_recos_of_registered"`
}

// Overview aggregates the registrations. TotalRegistered counts distinct
// emails; the other totals count rows.
type Overview struct {
	TotalRegistered             int            `json:"total_registered"`
	TotalQuestionnaireCompleted int            `json:"total_questionnaire_completed"`
	TotalRecommendationsViewed  int            `json:"total_recommendations_viewed"`
	ByCountry                   map[string]int `json:"by_country"`
	TopCities                   []CityCount    `json:"top_cities"`
	Funnel                      Funnel         `json:"funnel"`
}

func newOverview() *Overview {
	return &Overview{ByCountry: make(map[string]int)}
}

// finish sorts and truncates the city breakdown and fills in the funnel.
func (o *Overview) finish() {
	sort.SliceStable(o.TopCities, func(i, j int) bool {
		a, b := o.TopCities[i], o.TopCities[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.City != b.City {
			return a.City < b.City
		}
		return a.Country < b.Country
	})
	if len(o.TopCities) > topCities {
		o.TopCities = o.TopCities[:topCities]
	}
	o.Funnel = Funnel{
		RegisteredOfCompleted: pct(o.TotalRegistered, o.TotalQuestionnaireCompleted),
		ViewedOfRegistered:    pct(o.TotalRecommendationsViewed, o.TotalRegistered),
	}
}

func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*1000) / 10
}

// Store persists goal records and registrations.
type Store interface {
	// Save inserts a new record and returns its goal id.
	Save(ctx context.Context, rec *model.GoalRecord) (string, error)
	Get(ctx context.Context, goalID string) (*model.GoalRecord, error)
	// ListByOwner returns the owner's goals, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.GoalRecord, error)
	MarkEmailSent(ctx context.Context, goalID string, at time.Time) error
	MarkRevisited(ctx context.Context, goalID string, at time.Time) error
	Analytics(ctx context.Context) (*Analytics, error)

	// SaveRegistration normalizes and inserts reg, stamping ConsentAt and
	// CreatedAt with at, and returns the new id.
	SaveRegistration(ctx context.Context, reg *model.Registration, at time.Time) (int64, error)
	MarkRecommendationsViewed(ctx context.Context, id int64) error
	// LatestRegistrations returns up to limit registrations, newest first.
	LatestRegistrations(ctx context.Context, limit int) ([]model.Registration, error)
	Overview(ctx context.Context) (*Overview, error)
	Close() error
}
