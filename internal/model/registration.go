package model

import (
	"errors"
	"strings"
	"time"
)

// Registration is a visitor who left contact details after completing the
// risk questionnaire.
type Registration struct {
	ID                     int64        `json:"id"`
	Name                   string       `json:"name,omitempty"`
	Email                  string       `json:"email"`
	City                   string       `json:"city,omitempty"`
	Country                string       `json:"country,omitempty"`
	Consent                bool         `json:"consent"`
	ConsentAt              time.Time    `json:"consent_at"`
	QuestionnaireCompleted bool         `json:"questionnaire_completed"`
	RecommendationsViewed  bool         `json:"recommendations_viewed"`
	RiskScore              *int         `json:"risk_score,omitempty"`
	RiskCategory           RiskCategory `json:"risk_category,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
}

// Normalize trims the free-text fields and rejects a registration without an
// email address or without consent.
func (r *Registration) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.City = strings.TrimSpace(r.City)
	r.Country = strings.TrimSpace(r.Country)
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !r.Consent {
		return errors.New("consent is required")
	}
	if r.RiskCategory != "" && !r.RiskCategory.Valid() {
		return errors.New("unknown risk category " + string(r.RiskCategory))
	}
	return nil
}
