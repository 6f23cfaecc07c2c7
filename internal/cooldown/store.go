// Package cooldown implements the per-strategy, per-symbol suppression state
// that prevents alert storms. One Store per cooldown namespace; the namespace
// belongs to exactly one strategy, which is the only writer.
package cooldown

import (
	"context"
	"fmt"
	"time"

	"cryptoScanBot/internal/ports"
)

// Store holds the in-memory cooldown map for one namespace and writes every
// mutation through to durable storage. It is hydrated from storage at
// construction; missing or corrupt storage starts as empty state.
//
// A Store is not safe for concurrent use. Each instance is owned by a single
// scanner goroutine, so no internal locking is needed.
type Store struct {
	namespace string
	repo      ports.CooldownRepository
	logger    ports.Logger
	now       func() time.Time
	entries   map[string]time.Time
}

// NewStore creates a Store for the given namespace and hydrates it from the
// repository. A load failure is logged and treated as empty state; the
// cooldown is an anti-spam guard, not a correctness-critical ledger.
func NewStore(ctx context.Context, namespace string, repo ports.CooldownRepository, logger ports.Logger, now func() time.Time) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("cooldown namespace is required")
	}
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("repository and logger are required for cooldown store")
	}
	if now == nil {
		now = time.Now
	}

	entries, err := repo.Load(ctx, namespace)
	if err != nil {
		logger.Warn(ctx, "Failed to load cooldown state, starting empty",
			map[string]interface{}{"namespace": namespace, "error": err.Error()})
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]time.Time)
	}

	return &Store{
		namespace: namespace,
		repo:      repo,
		logger:    logger,
		now:       now,
		entries:   entries,
	}, nil
}

// IsSuppressed reports whether the symbol's last alert still suppresses a new
// one under the given policy. The policy is passed per check so a settings
// change takes effect on the next cycle without rebuilding the store.
func (s *Store) IsSuppressed(symbol string, policy Policy) bool {
	last, ok := s.entries[symbol]
	if !ok {
		return false
	}
	return policy.Suppressed(last, s.now())
}

// Record marks the symbol as alerted now and writes the updated state
// through. The entry for a key is overwritten, never duplicated. A failed
// write is logged but the in-memory state stays authoritative for the rest of
// the process lifetime.
func (s *Store) Record(ctx context.Context, symbol string) {
	s.entries[symbol] = s.now()
	if err := s.repo.Save(ctx, s.namespace, s.entries); err != nil {
		s.logger.Warn(ctx, "Failed to persist cooldown state, keeping in-memory state",
			map[string]interface{}{"namespace": s.namespace, "symbol": symbol, "error": err.Error()})
	}
}

// LastAlert returns the recorded instant for a symbol, if any.
func (s *Store) LastAlert(symbol string) (time.Time, bool) {
	last, ok := s.entries[symbol]
	return last, ok
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return len(s.entries)
}
