package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubSource struct {
	body string
	err  error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Open(_ context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestManager_ReloadWritesSnapshot(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "data", "catalog.json")
	m, err := NewManager(context.Background(), &stubSource{body: sampleCSV}, snapPath)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := len(m.Funds()); got != 3 {
		t.Fatalf("expected 3 funds, got %d", got)
	}
	if _, err := os.Stat(snapPath); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	snap, err := LoadSnapshot(snapPath)
	if err != nil || snap == nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Funds) != 3 || snap.Source != "stub" {
		t.Errorf("unexpected snapshot: %d funds from %q", len(snap.Funds), snap.Source)
	}
}

func TestManager_FundsReturnsCopy(t *testing.T) {
	m, err := NewManager(context.Background(), &stubSource{body: sampleCSV}, "")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	f := m.Funds()
	f[0].Name = "mutated"
	if m.Funds()[0].Name == "mutated" {
		t.Error("Funds must return a copy")
	}
}

func TestManager_FallsBackToSnapshot(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "catalog.json")
	if _, err := NewManager(context.Background(), &stubSource{body: sampleCSV}, snapPath); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m, err := NewManager(context.Background(), &stubSource{err: errors.New("unreachable")}, snapPath)
	if err != nil {
		t.Fatalf("expected snapshot fallback, got %v", err)
	}
	if got := len(m.Funds()); got != 3 {
		t.Errorf("expected 3 funds from snapshot, got %d", got)
	}
	if _, from := m.LoadedAt(); from != "stub" {
		t.Errorf("loaded from = %q, want snapshot source", from)
	}
}

func TestManager_NoSourceNoSnapshot(t *testing.T) {
	_, err := NewManager(context.Background(), &stubSource{err: errors.New("down")}, filepath.Join(t.TempDir(), "none.json"))
	if err == nil {
		t.Fatal("expected error without source or snapshot")
	}
}

func TestManager_FailedReloadKeepsCatalog(t *testing.T) {
	src := &stubSource{body: sampleCSV}
	m, err := NewManager(context.Background(), src, "")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	src.body = "Fund Name\nonly\n"
	if err := m.Reload(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
	if got := len(m.Funds()); got != 3 {
		t.Errorf("catalog replaced on failed reload: %d funds", got)
	}
}
