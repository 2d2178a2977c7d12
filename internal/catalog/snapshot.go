package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"RoboAdvisor/internal/model"
)

// Snapshot is the last successfully loaded catalog, cached on disk so the
// process can start when the source is unreachable.
type Snapshot struct {
	Source   string       `json:"source"`
	LoadedAt time.Time    `json:"loaded_at"`
	Funds    []model.Fund `json:"funds"`
}

// LoadSnapshot reads a cached catalog. Returns nil without error if the file doesn't exist.
func LoadSnapshot(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSnapshot writes the cached catalog as JSON, creating parent directories.
func SaveSnapshot(filePath string, snap *Snapshot) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
