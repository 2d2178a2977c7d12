package goals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/notifier"
	"RoboAdvisor/internal/projection"
	"RoboAdvisor/internal/recommend"
	"RoboAdvisor/internal/store"
)

var (
	// ErrPersist wraps a store failure on save. The built record is still returned.
	ErrPersist = errors.New("goal not persisted")
	// ErrMailerDisabled is returned by EmailGoal when no mail relay is configured.
	ErrMailerDisabled = errors.New("email delivery not configured")
)

// Mailer sends a message, retrying transient failures.
type Mailer interface {
	SendWithRetry(ctx context.Context, to, subject, body string, maxRetries int) error
}

// FundLister supplies the current fund catalog.
type FundLister interface {
	Funds() []model.Fund
}

// Service runs the goal lifecycle on top of a Store.
type Service struct {
	store   store.Store
	engine  *projection.Engine
	catalog FundLister
	mailer  Mailer

	// Now is the clock used for ids and timestamps.
	Now         func() time.Time
	MailRetries int
}

// NewService wires a goal service. mailer may be nil.
func NewService(st store.Store, engine *projection.Engine, catalog FundLister, mailer Mailer) *Service {
	return &Service{
		store:       st,
		engine:      engine,
		catalog:     catalog,
		mailer:      mailer,
		Now:         func() time.Time { return time.Now().UTC() },
		MailRetries: 3,
	}
}

// Create validates the input, projects it and saves the result. Validation
// errors wrap projection.ErrInvalidInput; store errors wrap ErrPersist and
// come with the record.
func (s *Service) Create(ctx context.Context, ownerID string, in model.GoalInput, recentOneYear *float64) (*model.GoalRecord, error) {
	if err := projection.ValidateGoalInput(in); err != nil {
		return nil, err
	}
	return s.Save(ctx, ownerID, in, s.engine.Calculate(in, recentOneYear))
}

// Save builds a goal record with a fresh id and persists it.
func (s *Service) Save(ctx context.Context, ownerID string, in model.GoalInput, result model.ProjectionResult) (*model.GoalRecord, error) {
	now := s.Now()
	rec := &model.GoalRecord{
		GoalID:     NewGoalID(now, ownerID),
		OwnerID:    ownerID,
		Input:      in,
		Projection: result,
		Status:     model.StatusSaved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.store.Save(ctx, rec); err != nil {
		log.Printf("[ERROR] failed to save goal %s: %v", rec.GoalID, err)
		return rec, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	log.Printf("[INFO] goal saved: %s (%s, %d years)", rec.GoalID, result.Category, in.HorizonYears)
	return rec, nil
}

func (s *Service) Get(ctx context.Context, goalID string) (*model.GoalRecord, error) {
	return s.store.Get(ctx, goalID)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.GoalRecord, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) MarkEmailSent(ctx context.Context, goalID string) error {
	return s.store.MarkEmailSent(ctx, goalID, s.Now())
}

func (s *Service) MarkRevisited(ctx context.Context, goalID string) error {
	return s.store.MarkRevisited(ctx, goalID, s.Now())
}

func (s *Service) Analytics(ctx context.Context) (*store.Analytics, error) {
	return s.store.Analytics(ctx)
}

// Shortlist returns the funds suggested alongside a goal.
func (s *Service) Shortlist(rec *model.GoalRecord) []model.Fund {
	if s.catalog == nil {
		return nil
	}
	return recommend.ForGoal(s.engine.Tables, s.catalog.Funds(), rec.Projection.Category, rec.Input.MonthlySIP)
}

// EmailGoal sends the goal summary to the given address and marks the goal
// as emailed once delivery succeeds.
func (s *Service) EmailGoal(ctx context.Context, goalID, to string) error {
	if s.mailer == nil {
		return ErrMailerDisabled
	}
	rec, err := s.store.Get(ctx, goalID)
	if err != nil {
		return err
	}
	body := notifier.FormatGoalSummary(rec, s.Shortlist(rec))
	if err := s.mailer.SendWithRetry(ctx, to, notifier.GoalSubject(rec), body, s.MailRetries); err != nil {
		return fmt.Errorf("email goal %s: %w", goalID, err)
	}
	log.Printf("[INFO] goal %s emailed", goalID)
	return s.MarkEmailSent(ctx, goalID)
}
