// Package cooldownfile persists cooldown state as one JSON file per
// namespace: a flat symbol -> RFC3339Nano timestamp object that can be
// inspected and edited by hand and round-trips timestamps exactly.
package cooldownfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cryptoScanBot/internal/ports"
)

// Repository implements ports.CooldownRepository on the local filesystem.
type Repository struct {
	dir    string
	logger ports.Logger
}

// Config holds configuration for the file-backed cooldown repository.
type Config struct {
	Dir    string // Directory holding the per-namespace cooldown files
	Logger ports.Logger
}

// NewRepository creates the data directory if needed and returns the store.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for cooldown repository")
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cooldown data directory '%s': %w", dir, err)
	}
	return &Repository{dir: dir, logger: cfg.Logger}, nil
}

func (r *Repository) path(namespace string) (string, error) {
	if namespace == "" || strings.ContainsAny(namespace, `/\`) {
		return "", fmt.Errorf("%w: invalid cooldown namespace %q", ports.ErrInvalidRequest, namespace)
	}
	return filepath.Join(r.dir, namespace+"_cooldown.json"), nil
}

// Load reads the namespace file. A missing file yields empty state. A corrupt
// file is logged and also treated as empty: stale suppression state is not
// worth refusing to start over.
func (r *Repository) Load(ctx context.Context, namespace string) (map[string]time.Time, error) {
	path, err := r.path(namespace)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldown file '%s': %w", path, err)
	}

	var encoded map[string]string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		r.logger.Warn(ctx, "Corrupt cooldown file, treating as empty",
			map[string]interface{}{"path": path, "error": err.Error()})
		return map[string]time.Time{}, nil
	}

	entries := make(map[string]time.Time, len(encoded))
	for symbol, stamp := range encoded {
		t, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			r.logger.Warn(ctx, "Skipping unparseable cooldown entry",
				map[string]interface{}{"path": path, "symbol": symbol, "value": stamp})
			continue
		}
		entries[symbol] = t
	}
	return entries, nil
}

// Save overwrites the namespace file with the full mapping. The write goes to
// a temp file first and is renamed into place so a shutdown mid-write never
// leaves a half-written file behind.
func (r *Repository) Save(ctx context.Context, namespace string, entries map[string]time.Time) error {
	path, err := r.path(namespace)
	if err != nil {
		return err
	}

	encoded := make(map[string]string, len(entries))
	for symbol, t := range entries {
		encoded[symbol] = t.Format(time.RFC3339Nano)
	}

	raw, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cooldown state for '%s': %w", namespace, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: writing '%s': %v", ports.ErrWriteFailed, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replacing '%s': %v", ports.ErrWriteFailed, path, err)
	}
	return nil
}
