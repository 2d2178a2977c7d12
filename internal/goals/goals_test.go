package goals

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/projection"
	"RoboAdvisor/internal/store"
)

var fixedNow = time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)

func TestNewGoalID_Format(t *testing.T) {
	id := NewGoalID(fixedNow, "u1")
	if !regexp.MustCompile(`^GOAL_20251201_[0-9A-F]{5}$`).MatchString(id) {
		t.Errorf("unexpected id %q", id)
	}
	if id != NewGoalID(fixedNow, "u1") {
		t.Error("id must be deterministic for the same instant and owner")
	}
	if NewGoalID(fixedNow, "") != NewGoalID(fixedNow, "anon") {
		t.Error("empty owner should hash as anon")
	}
	if NewGoalID(fixedNow, "u1") == NewGoalID(fixedNow.Add(time.Nanosecond), "u1") {
		t.Error("different instants should give different ids")
	}
}

type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, *model.GoalRecord) (string, error) {
	return "", errors.New("database is locked")
}

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) SendWithRetry(_ context.Context, to, subject, body string, _ int) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

type staticCatalog []model.Fund

func (c staticCatalog) Funds() []model.Fund { return c }

func newService(st store.Store, mailer Mailer) *Service {
	catalog := staticCatalog{{
		Name: "Nifty Index Fund", RiskProfile: "Medium Risk", Duration: "> 1 year",
		Type: model.FundTypeIndexETF, Category: "Index Fund", MinInvestment: 500, Rating: 5,
	}}
	s := NewService(st, projection.NewEngine(assumptions.Default()), catalog, mailer)
	clock := fixedNow
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

var plan = model.GoalInput{Corpus: 100000, MonthlySIP: 10000, HorizonYears: 10, RiskCategory: model.MediumRisk}

func TestService_CreateAndLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newService(store.NewMemoryStore(), nil)

	rec, err := s.Create(ctx, "u1", plan, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Status != model.StatusSaved || !strings.HasPrefix(rec.GoalID, "GOAL_20251201_") {
		t.Errorf("unexpected record %s %s", rec.GoalID, rec.Status)
	}
	if !rec.Projection.MeanReversionApplied {
		t.Error("medium risk with default recent return should revert")
	}

	if err := s.MarkRevisited(ctx, rec.GoalID); err != nil {
		t.Fatalf("MarkRevisited: %v", err)
	}
	got, _ := s.Get(ctx, rec.GoalID)
	if got.Status != model.StatusRevisited || got.RevisitedAt == nil {
		t.Errorf("after revisit: %s %v", got.Status, got.RevisitedAt)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("updated_at not advanced")
	}

	list, _ := s.ListByOwner(ctx, "u1")
	if len(list) != 1 {
		t.Errorf("expected 1 goal for owner, got %d", len(list))
	}
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	s := newService(store.NewMemoryStore(), nil)
	_, err := s.Create(context.Background(), "", model.GoalInput{HorizonYears: 10, RiskCategory: model.LowRisk}, nil)
	if !errors.Is(err, projection.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_SaveFailureReturnsRecord(t *testing.T) {
	s := newService(failingStore{}, nil)
	res := s.engine.Calculate(plan, nil)
	rec, err := s.Save(context.Background(), "u1", plan, res)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if rec == nil || rec.GoalID == "" || rec.Projection != res {
		t.Errorf("record should still be usable: %+v", rec)
	}
}

func TestService_EmailGoal(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	s := newService(store.NewMemoryStore(), mailer)
	rec, _ := s.Create(ctx, "u1", plan, nil)

	if err := s.EmailGoal(ctx, rec.GoalID, "user@example.com"); err != nil {
		t.Fatalf("EmailGoal: %v", err)
	}
	if mailer.to != "user@example.com" || !strings.Contains(mailer.subject, rec.GoalID) {
		t.Errorf("unexpected mail %q %q", mailer.to, mailer.subject)
	}
	if !strings.Contains(mailer.body, "Nifty Index Fund") {
		t.Error("summary should include the fund shortlist")
	}
	got, _ := s.Get(ctx, rec.GoalID)
	if got.Status != model.StatusEmailSent || got.EmailSentAt == nil {
		t.Errorf("after email: %s %v", got.Status, got.EmailSentAt)
	}

	if err := s.EmailGoal(ctx, "GOAL_missing", "user@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_EmailGoalFailureLeavesStatus(t *testing.T) {
	ctx := context.Background()
	s := newService(store.NewMemoryStore(), &fakeMailer{err: errors.New("relay down")})
	rec, _ := s.Create(ctx, "u1", plan, nil)

	if err := s.EmailGoal(ctx, rec.GoalID, "user@example.com"); err == nil {
		t.Fatal("expected send error")
	}
	got, _ := s.Get(ctx, rec.GoalID)
	if got.Status != model.StatusSaved {
		t.Errorf("status changed to %s after failed send", got.Status)
	}
}

func TestService_EmailGoalWithoutMailer(t *testing.T) {
	ctx := context.Background()
	s := newService(store.NewMemoryStore(), nil)
	rec, _ := s.Create(ctx, "u1", plan, nil)

	if err := s.EmailGoal(ctx, rec.GoalID, "user@example.com"); !errors.Is(err, ErrMailerDisabled) {
		t.Errorf("expected ErrMailerDisabled, got %v", err)
	}
	got, _ := s.Get(ctx, rec.GoalID)
	if got.Status != model.StatusSaved || got.EmailSentAt != nil {
		t.Error("record must be untouched without a mailer")
	}
}
