package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/recommend"

	"github.com/robfig/cron/v3"
)

// Catalog is the part of the catalog manager the scheduler drives.
type Catalog interface {
	Reload(ctx context.Context) error
	Funds() []model.Fund
}

// Scheduler manages the catalog refresh and stale-data audit tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Catalog Catalog
	Ctx     context.Context
	Now     func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, catalog Catalog) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Catalog: catalog,
		Ctx:     ctx,
		Now:     time.Now,
	}
}

// RegisterAll registers the refresh and audit tasks.
func (s *Scheduler) RegisterAll(refreshCron, auditCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(auditCron, func() { s.AuditNow() }); err != nil {
		return fmt.Errorf("register audit task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow reloads the catalog immediately.
func (s *Scheduler) RefreshNow() error {
	return s.Catalog.Reload(s.Ctx)
}

// AuditNow logs every fund whose data is stale and returns them.
func (s *Scheduler) AuditNow() []model.Fund {
	now := s.Now()
	stale := recommend.StaleFunds(s.Catalog.Funds(), now)
	for _, f := range stale {
		_, days := recommend.Freshness(f.LastUpdated, now)
		log.Printf("[WARN] stale fund data: %s (last updated %d days ago)", f.Name, days)
	}
	log.Printf("[INFO] catalog audit: %d stale funds", len(stale))
	return stale
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running catalog refresh")
	if err := s.RefreshNow(); err != nil {
		log.Printf("[ERROR] catalog refresh: %v", err)
	}
}
