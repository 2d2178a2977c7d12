package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"RoboAdvisor/internal/model"
)

// Manager holds the current fund catalog and swaps it atomically on reload.
type Manager struct {
	mu           sync.RWMutex
	source       Source
	snapshotPath string
	funds        []model.Fund
	loadedAt     time.Time
	loadedFrom   string
}

// NewManager creates a Manager and performs the first load. If the source
// fails and a snapshot file exists, the snapshot is served instead.
func NewManager(ctx context.Context, source Source, snapshotPath string) (*Manager, error) {
	m := &Manager{source: source, snapshotPath: snapshotPath}
	err := m.Reload(ctx)
	if err == nil {
		return m, nil
	}
	if snapshotPath == "" {
		return nil, err
	}
	snap, snapErr := LoadSnapshot(snapshotPath)
	if snapErr != nil || snap == nil {
		return nil, fmt.Errorf("load catalog: %w (no usable snapshot)", err)
	}
	log.Printf("[WARN] catalog source %s failed: %v, serving snapshot from %s", source.Name(), err, snap.LoadedAt.Format(time.RFC3339))
	m.funds = snap.Funds
	m.loadedAt = snap.LoadedAt
	m.loadedFrom = snap.Source
	return m, nil
}

// Reload reads the source and replaces the catalog. On failure the current
// catalog stays in place.
func (m *Manager) Reload(ctx context.Context) error {
	rc, err := m.source.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	funds, err := ParseCSV(rc)
	if err != nil {
		return fmt.Errorf("parse catalog from %s: %w", m.source.Name(), err)
	}

	now := time.Now()
	m.mu.Lock()
	m.funds = funds
	m.loadedAt = now
	m.loadedFrom = m.source.Name()
	m.mu.Unlock()

	log.Printf("[INFO] catalog loaded: %d funds from %s", len(funds), m.source.Name())

	if m.snapshotPath != "" {
		snap := &Snapshot{Source: m.source.Name(), LoadedAt: now, Funds: funds}
		if err := SaveSnapshot(m.snapshotPath, snap); err != nil {
			log.Printf("[ERROR] failed to save catalog snapshot: %v", err)
		}
	}
	return nil
}

// Funds returns a copy of the current catalog.
func (m *Manager) Funds() []model.Fund {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Fund(nil), m.funds...)
}

// LoadedAt reports when and from where the current catalog was loaded.
func (m *Manager) LoadedAt() (time.Time, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadedAt, m.loadedFrom
}
