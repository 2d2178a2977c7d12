package store

import (
	"context"
	"fmt"
	"strings"
	"sort"
	"sync"
	"time"

	"RoboAdvisor/internal/model"
)

// MemoryStore keeps goals and registrations in process memory. Used when no database path is
// configured and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	goals map[string]*model.GoalRecord
	seq   map[string]int
	next  int
	regs  []model.Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		goals: make(map[string]*model.GoalRecord),
		seq:   make(map[string]int),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec *model.GoalRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[rec.GoalID]; ok {
		return "", fmt.Errorf("goal %s already exists", rec.GoalID)
	}
	cp := *rec
	s.goals[rec.GoalID] = &cp
	s.next++
	s.seq[rec.GoalID] = s.next
	return rec.GoalID, nil
}

func (s *MemoryStore) Get(_ context.Context, goalID string) (*model.GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.goals[goalID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]model.GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GoalRecord
	for _, rec := range s.goals {
		if rec.OwnerID == ownerID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].GoalID] > s.seq[out[j].GoalID]
	})
	return out, nil
}

func (s *MemoryStore) MarkEmailSent(_ context.Context, goalID string, at time.Time) error {
	return s.mark(goalID, model.StatusEmailSent, at)
}

func (s *MemoryStore) MarkRevisited(_ context.Context, goalID string, at time.Time) error {
	return s.mark(goalID, model.StatusRevisited, at)
}

func (s *MemoryStore) mark(goalID string, event model.GoalStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.goals[goalID]
	if !ok {
		return ErrNotFound
	}
	rec.Mark(event, at)
	return nil
}

func (s *MemoryStore) Analytics(_ context.Context) (*Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := newAnalytics()
	var corpus, sip, horizon, expected float64
	for _, rec := range s.goals {
		a.TotalGoals++
		a.ByStatus[rec.Status]++
		a.ByConfidence[rec.Projection.Confidence]++
		a.ByRiskCategory[rec.Input.RiskCategory]++
		corpus += rec.Input.Corpus
		sip += rec.Input.MonthlySIP
		horizon += float64(rec.Input.HorizonYears)
		expected += rec.Projection.Expected
	}
	if n := float64(a.TotalGoals); n > 0 {
		a.AvgCorpus = corpus / n
		a.AvgSIP = sip / n
		a.AvgHorizon = horizon / n
		a.AvgExpected = expected / n
	}
	return a, nil
}

func (s *MemoryStore) SaveRegistration(_ context.Context, reg *model.Registration, at time.Time) (int64, error) {
	if err := reg.Normalize(); err != nil {
		return 0, fmt.Errorf("invalid registration: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *reg
	cp.ID = int64(len(s.regs) + 1)
	cp.ConsentAt = at
	cp.CreatedAt = at
	cp.QuestionnaireCompleted = true
	cp.RecommendationsViewed = false
	if reg.RiskScore != nil {
		score := *reg.RiskScore
		cp.RiskScore = &score
	}
	s.regs = append(s.regs, cp)
	return cp.ID, nil
}

func (s *MemoryStore) MarkRecommendationsViewed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.regs)) {
		return fmt.Errorf("registration %d: %w", id, ErrNotFound)
	}
	s.regs[id-1].RecommendationsViewed = true
	return nil
}

func (s *MemoryStore) LatestRegistrations(_ context.Context, limit int) ([]model.Registration, error) {
	if limit <= 0 {
		limit = DefaultRegistrationLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Registration, len(s.regs))
	copy(out, s.regs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Overview(_ context.Context) (*Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := newOverview()
	emails := make(map[string]bool)
	cities := make(map[[2]string]int)
	for _, r := range s.regs {
		emails[r.Email] = true
		if r.QuestionnaireCompleted {
			o.TotalQuestionnaireCompleted++
		}
		if r.RecommendationsViewed {
			o.TotalRecommendationsViewed++
		}
		o.ByCountry[r.Country]++
		if strings.TrimSpace(r.City) != "" {
			cities[[2]string{r.City, r.Country}]++
		}
	}
	o.TotalRegistered = len(emails)
	for k, n := range cities {
		o.TopCities = append(o.TopCities, CityCount{City: k[0], Country: k[1], Count: n})
	}
	o.finish()
	return o, nil
}

func (s *MemoryStore) Close() error { return nil }
