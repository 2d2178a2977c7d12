package httpapi

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/store"
)

// Registrations is the part of store.Store behind the registration routes.
type Registrations interface {
	SaveRegistration(ctx context.Context, reg *model.Registration, at time.Time) (int64, error)
	MarkRecommendationsViewed(ctx context.Context, id int64) error
	LatestRegistrations(ctx context.Context, limit int) ([]model.Registration, error)
	Overview(ctx context.Context) (*store.Overview, error)
}

type registrationRequest struct {
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	City         string             `json:"city"`
	Country      string             `json:"country"`
	Consent      bool               `json:"consent"`
	RiskScore    *int               `json:"risk_score"`
	RiskCategory model.RiskCategory `json:"risk_category"`
}

func (s *Server) createRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !decode(w, r, &req) {
		return
	}
	reg := &model.Registration{
		Name:         req.Name,
		Email:        req.Email,
		City:         req.City,
		Country:      req.Country,
		Consent:      req.Consent,
		RiskScore:    req.RiskScore,
		RiskCategory: req.RiskCategory,
	}
	if err := reg.Normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	addr, err := mail.ParseAddress(reg.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	reg.Email = addr.Address
	// A score alone is enough to place the visitor in a category.
	if reg.RiskScore != nil && reg.RiskCategory == "" {
		cat, ok := s.tables.CategoryForScore(*reg.RiskScore)
		if !ok {
			writeError(w, http.StatusBadRequest, "score outside questionnaire range")
			return
		}
		reg.RiskCategory = cat
	}

	now := s.now()
	id, err := s.regs.SaveRegistration(r.Context(), reg, now)
	if err != nil {
		serverError(w, err)
		return
	}
	reg.ID = id
	reg.ConsentAt = now
	reg.CreatedAt = now
	reg.QuestionnaireCompleted = true
	writeJSON(w, http.StatusCreated, reg)
}

func (s *Server) latestRegistrations(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultRegistrationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	regs, err := s.regs.LatestRegistrations(r.Context(), limit)
	if err != nil {
		serverError(w, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

func (s *Server) markViewed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration id")
		return
	}
	if err := s.regs.MarkRecommendationsViewed(r.Context(), id); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) registrationOverview(w http.ResponseWriter, r *http.Request) {
	o, err := s.regs.Overview(r.Context())
	if err != nil {
		serverError(w, err)
		return
	}
	if o.TopCities == nil {
		o.TopCities = []store.CityCount{}
	}
	writeJSON(w, http.StatusOK, o)
}
