package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cryptoScanBot/internal/ports"
)

// Store owns the persisted scanner settings. Readers take value snapshots;
// writers replace the whole document atomically after validation, so a scan
// cycle can never observe a half-updated configuration.
type Store struct {
	path   string
	logger ports.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore loads the settings document from path, falling back to (and
// persisting) the defaults when the file is missing. A corrupt file is logged
// and replaced by defaults rather than refusing to start.
func NewStore(path string, log ports.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("settings path is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required for settings store")
	}

	s := &Store{path: path, logger: log, current: DefaultSettings()}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := s.persist(s.current); err != nil {
			log.Warn(context.Background(), "Could not persist default settings",
				map[string]interface{}{"path": path, "error": err.Error()})
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	default:
		loaded := DefaultSettings() // Unmarshal over defaults so absent fields keep their values
		if err := json.Unmarshal(raw, &loaded); err != nil {
			log.Warn(context.Background(), "Corrupt settings file, using defaults",
				map[string]interface{}{"path": path, "error": err.Error()})
		} else if err := loaded.Validate(); err != nil {
			log.Warn(context.Background(), "Invalid persisted settings, using defaults",
				map[string]interface{}{"path": path, "error": err.Error()})
		} else {
			s.current = loaded
		}
	}

	return s, nil
}

// Snapshot returns the current settings by value. Each scan cycle takes one
// snapshot at its start and never re-reads mid-cycle.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply validates, persists, and installs a full settings document. On any
// failure the previous (last-known-good) settings stay in effect.
func (s *Store) Apply(ctx context.Context, next Settings) error {
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrConfigurationError, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next
	s.logger.Info(ctx, "Scanner settings updated", map[string]interface{}{"path": s.path})
	return nil
}

// persist writes the document to a temp file and renames it into place.
func (s *Store) persist(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: writing '%s': %v", ports.ErrWriteFailed, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replacing '%s': %v", ports.ErrWriteFailed, s.path, err)
	}
	return nil
}
