package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/estimatr/internal/logger"
)

const fileName = "ui-state.json"

// Preferences are remembered between wizard runs. They only position list
// cursors; nothing is ever pre-selected from them.
type Preferences struct {
	LastType string `json:"last_type,omitempty"`
	LastCity string `json:"last_city,omitempty"`
}

// Path returns the preferences file location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Load reads preferences from <dataDir>/ui-state.json.
// Returns empty preferences if the file doesn't exist or on error.
func Load(dataDir string) *Preferences {
	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to read preferences: %v", err)
		}
		return &Preferences{}
	}

	var p Preferences
	if err := sonic.Unmarshal(data, &p); err != nil {
		logger.Warn("Failed to parse preferences: %v", err)
		return &Preferences{}
	}
	return &p
}

// Save writes preferences, creating dataDir if needed.
func Save(dataDir string, p *Preferences) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	path := Path(dataDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}

	logger.Debug("Preferences saved to %s", path)
	return nil
}
