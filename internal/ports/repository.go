package ports

import (
	"context"
	"time"

	"cryptoScanBot/internal/domain"
)

// CooldownRepository persists per-namespace cooldown state so suppression
// survives process restarts. A namespace belongs to exactly one strategy
// (optionally split further, e.g. "gainers"/"losers"), so no two strategies
// ever contend on the same key.
type CooldownRepository interface {
	// Load retrieves the symbol -> last-alert mapping for a namespace.
	// A missing store is not an error; it yields an empty map.
	Load(ctx context.Context, namespace string) (map[string]time.Time, error)
	// Save durably overwrites the full mapping for a namespace.
	Save(ctx context.Context, namespace string, entries map[string]time.Time) error
}

// AlertRepository stores dispatched alerts for the history endpoint.
type AlertRepository interface {
	// RecordAlert saves a dispatched alert and returns its assigned ID.
	RecordAlert(ctx context.Context, alert *domain.Alert) (int64, error)
	// RecentAlerts retrieves the most recent alerts across all strategies,
	// newest first, up to a limit.
	RecentAlerts(ctx context.Context, limit int) ([]*domain.Alert, error)
}
