package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"RoboAdvisor/internal/model"
)

type fakeCatalog struct {
	funds   []model.Fund
	reloads int
	err     error
}

func (c *fakeCatalog) Reload(context.Context) error {
	c.reloads++
	return c.err
}

func (c *fakeCatalog) Funds() []model.Fund { return c.funds }

func TestAuditNow(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{funds: []model.Fund{
		{Name: "fresh", LastUpdated: now.AddDate(0, 0, -2)},
		{Name: "old", LastUpdated: now.AddDate(0, 0, -40)},
		{Name: "undated"},
	}}
	s := NewScheduler(context.Background(), cat)
	s.Now = func() time.Time { return now }

	stale := s.AuditNow()
	if len(stale) != 1 || stale[0].Name != "old" {
		t.Errorf("expected only 'old' to be stale, got %v", stale)
	}
}

func TestRefreshNow(t *testing.T) {
	cat := &fakeCatalog{err: errors.New("source down")}
	s := NewScheduler(context.Background(), cat)
	if err := s.RefreshNow(); err == nil {
		t.Error("expected reload error to surface")
	}
	s.refreshTask()
	if cat.reloads != 2 {
		t.Errorf("expected 2 reloads, got %d", cat.reloads)
	}
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeCatalog{})
	if err := s.RegisterAll("0 0 6 * * *", "0 30 6 * * 1"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
	if err := s.RegisterAll("bogus", "0 30 6 * * 1"); err == nil {
		t.Error("expected error for bad cron spec")
	}
}
