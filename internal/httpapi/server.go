package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/goals"
	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/projection"
	"RoboAdvisor/internal/recommend"
	"RoboAdvisor/internal/store"
)

// Server exposes the advisor over JSON/HTTP.
type Server struct {
	tables  *assumptions.Tables
	engine  *projection.Engine
	catalog goals.FundLister
	goals   *goals.Service
	regs    Registrations
	now     func() time.Time
}

func New(tables *assumptions.Tables, catalog goals.FundLister, svc *goals.Service, regs Registrations) *Server {
	return &Server{
		tables:  tables,
		engine:  projection.NewEngine(tables),
		catalog: catalog,
		goals:   svc,
		regs:    regs,
		now:     time.Now,
	}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/options", s.options)
	r.Post("/risk-profile", s.riskProfile)
	r.Post("/recommendations", s.recommendations)
	r.Post("/projections", s.projections)

	r.Post("/goals", s.createGoal)
	r.Get("/goals/{id}", s.getGoal)
	r.Post("/goals/{id}/email", s.emailGoal)
	r.Post("/goals/{id}/revisit", s.revisitGoal)
	r.Get("/owners/{owner}/goals", s.listGoals)
	r.Get("/analytics/goals", s.analytics)

	r.Post("/registrations", s.createRegistration)
	r.Get("/registrations", s.latestRegistrations)
	r.Post("/registrations/{id}/viewed", s.markViewed)
	r.Get("/analytics/registrations", s.registrationOverview)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"funds":          len(s.catalog.Funds()),
		"baseline_as_of": s.tables.BaselineAsOf(),
	})
}

func (s *Server) options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"risk_categories": model.RiskCategories,
		"durations":       s.tables.DurationLabels(),
		"baseline_as_of":  s.tables.BaselineAsOf(),
	})
}

type riskProfileRequest struct {
	Answers []int `json:"answers"`
}

type riskProfileResponse struct {
	Score        int                `json:"score"`
	RiskCategory model.RiskCategory `json:"risk_category"`
}

func (s *Server) riskProfile(w http.ResponseWriter, r *http.Request) {
	var req riskProfileRequest
	if !decode(w, r, &req) {
		return
	}
	total, cat, ok := s.tables.ScoreAnswers(req.Answers)
	if !ok {
		writeError(w, http.StatusBadRequest, "score outside questionnaire range")
		return
	}
	writeJSON(w, http.StatusOK, riskProfileResponse{Score: total, RiskCategory: cat})
}

type recommendationRequest struct {
	RiskCategory model.RiskCategory `json:"risk_category"`
	Amount       float64            `json:"amount"`
	Duration     string             `json:"duration"`
}

type recommendationResponse struct {
	Funds            []fundView         `json:"funds"`
	RiskCategory     model.RiskCategory `json:"risk_category"`
	CategoryFallback bool               `json:"category_fallback"`
	DurationFallback bool               `json:"duration_fallback"`
}

type fundView struct {
	model.Fund
	Freshness     recommend.FreshnessStatus `json:"freshness"`
	DaysSinceData int                       `json:"days_since_update"`
}

func (s *Server) fundViews(funds []model.Fund) []fundView {
	now := s.now()
	out := make([]fundView, 0, len(funds))
	for _, f := range funds {
		status, days := recommend.Freshness(f.LastUpdated, now)
		out = append(out, fundView{Fund: f, Freshness: status, DaysSinceData: days})
	}
	return out
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	res := recommend.Recommend(s.tables, s.catalog.Funds(), req.RiskCategory, req.Amount, req.Duration)
	writeJSON(w, http.StatusOK, recommendationResponse{
		Funds:            s.fundViews(res.Funds),
		RiskCategory:     res.Category,
		CategoryFallback: res.CategoryFallback,
		DurationFallback: res.DurationFallback,
	})
}

type goalRequest struct {
	model.GoalInput
	OwnerID       string   `json:"owner_id"`
	RecentOneYear *float64 `json:"recent_1y_return"`
}

type projectionResponse struct {
	model.ProjectionResult
	Scenarios []projection.Scenario `json:"scenarios"`
}

func (s *Server) projections(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decode(w, r, &req) {
		return
	}
	if err := projection.ValidateGoalInput(req.GoalInput); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := s.engine.Calculate(req.GoalInput, req.RecentOneYear)
	writeJSON(w, http.StatusOK, projectionResponse{
		ProjectionResult: res,
		Scenarios:        projection.ScenarioReturns(s.tables, res),
	})
}

type goalResponse struct {
	Goal      *model.GoalRecord `json:"goal"`
	Persisted bool              `json:"persisted"`
	Funds     []fundView        `json:"funds,omitempty"`
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.goals.Create(r.Context(), req.OwnerID, req.GoalInput, req.RecentOneYear)
	switch {
	case errors.Is(err, projection.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, goals.ErrPersist):
		// The projection is still useful to the caller; only storage failed.
		writeJSON(w, http.StatusOK, goalResponse{Goal: rec, Persisted: false, Funds: s.fundViews(s.goals.Shortlist(rec))})
		return
	case err != nil:
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goalResponse{Goal: rec, Persisted: true, Funds: s.fundViews(s.goals.Shortlist(rec))})
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request) {
	rec, err := s.goals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.goals.ListByOwner(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		serverError(w, err)
		return
	}
	if list == nil {
		list = []model.GoalRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": list})
}

type emailRequest struct {
	To string `json:"to"`
}

func (s *Server) emailGoal(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}
	addr, err := mail.ParseAddress(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	id := chi.URLParam(r, "id")
	err = s.goals.EmailGoal(r.Context(), id, addr.Address)
	switch {
	case errors.Is(err, goals.ErrMailerDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		log.Printf("[ERROR] email goal %s: %v", id, err)
		writeError(w, http.StatusBadGateway, "email delivery failed")
		return
	}
	s.respondGoal(w, r, id)
}

func (s *Server) revisitGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.goals.MarkRevisited(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	s.respondGoal(w, r, id)
}

func (s *Server) respondGoal(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.goals.Get(r.Context(), id)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.goals.Analytics(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	serverError(w, err)
}

func serverError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] write response: %v", err)
	}
}
