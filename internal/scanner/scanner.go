// Package scanner contains the strategy evaluators. Each scanner is one
// independent alerting rule with its own schedule, thresholds, and cooldown
// namespace; a scan cycle fetches the ranked universe, applies the strategy
// predicate, filters and records cooldowns, and returns the finalized batch.
package scanner

import (
	"context"
	"fmt"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"
	"cryptoScanBot/internal/universe"
)

// Scanner is the common capability all strategy evaluators implement.
type Scanner interface {
	// Kind returns the strategy identifier (also the manual-trigger name).
	Kind() domain.StrategyKind

	// Schedule reports whether the scanner is enabled and its scan interval
	// under the given settings snapshot.
	Schedule(settings config.Settings) (enabled bool, interval time.Duration)

	// Scan runs one cycle: evaluate the universe, filter through the cooldown
	// store, record the survivors, and return them ready for dispatch. A
	// returned error means the whole cycle was skipped; per-symbol failures
	// are absorbed and only logged.
	Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error)
}

// Deps bundles the collaborators shared by every scanner.
type Deps struct {
	Market       ports.MarketDataClient
	Cooldowns    ports.CooldownRepository
	Logger       ports.Logger
	Now          func() time.Time
	FetchTimeout time.Duration // Bound on a single network fetch
}

func (d *Deps) validate() error {
	if d.Market == nil || d.Cooldowns == nil || d.Logger == nil {
		return fmt.Errorf("market client, cooldown repository and logger are required")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.FetchTimeout <= 0 {
		d.FetchTimeout = 10 * time.Second
	}
	return nil
}

// fetchTickers grabs the full ticker snapshot under the fetch timeout.
func (d *Deps) fetchTickers(ctx context.Context) ([]domain.TickerSnapshot, error) {
	fctx, cancel := context.WithTimeout(ctx, d.FetchTimeout)
	defer cancel()
	return d.Market.GetTickers(fctx)
}

// fetchUniverse grabs the ticker snapshot and ranks it into the bounded
// interesting set for this cycle.
func (d *Deps) fetchUniverse(ctx context.Context, minQuoteVolume float64, topN int) (domain.RankedUniverse, error) {
	tickers, err := d.fetchTickers(ctx)
	if err != nil {
		return domain.RankedUniverse{}, err
	}
	return universe.Select(tickers, minQuoteVolume, topN), nil
}

// fetchKlines grabs one symbol's historical series under the fetch timeout.
func (d *Deps) fetchKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	fctx, cancel := context.WithTimeout(ctx, d.FetchTimeout)
	defer cancel()
	return d.Market.GetKlines(fctx, symbol, interval, limit)
}

// bound truncates a batch to the configured per-alert coin limit.
func bound(alerts []domain.Alert, maxCoins int) []domain.Alert {
	if maxCoins > 0 && len(alerts) > maxCoins {
		return alerts[:maxCoins]
	}
	return alerts
}
