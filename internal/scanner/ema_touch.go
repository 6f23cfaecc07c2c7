package scanner

import (
	"context"
	"fmt"
	"math"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/cooldown"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/indicators"
)

const (
	emaCooldownNamespace = "ema"
	emaKlineInterval     = "30m"
	emaKlineLimit        = 250
)

// Auxiliary EMA periods computed alongside the configured touch period,
// logged for context with each hit.
var emaContextPeriods = []int{5, 10, 223}

// EMATouch alerts when a symbol's price trades within a configured distance
// of its EMA on the 30m timeframe. Suppression is aligned to the UTC daily
// candle: at most one alert per symbol per day, however often the scan runs.
type EMATouch struct {
	deps     Deps
	cooldown *cooldown.Store
}

// NewEMATouch creates the scanner and hydrates its cooldown state.
func NewEMATouch(ctx context.Context, deps Deps) (*EMATouch, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("ema touch scanner: %w", err)
	}
	store, err := cooldown.NewStore(ctx, emaCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("ema touch scanner: %w", err)
	}
	return &EMATouch{deps: deps, cooldown: store}, nil
}

// Kind returns the strategy identifier.
func (s *EMATouch) Kind() domain.StrategyKind {
	return domain.StrategyEMATouch
}

// Schedule reports the enabled flag and interval from the settings snapshot.
func (s *EMATouch) Schedule(settings config.Settings) (bool, time.Duration) {
	return settings.EMATouch.Enabled, time.Duration(settings.EMATouch.ScanIntervalMinutes) * time.Minute
}

// Scan evaluates the merged ranked universe against the EMA-proximity
// predicate.
func (s *EMATouch) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	uni, err := s.deps.fetchUniverse(ctx, settings.General.MinVolume24h, settings.General.TopN)
	if err != nil {
		return nil, fmt.Errorf("fetching universe: %w", err)
	}
	if uni.IsEmpty() {
		s.deps.Logger.Debug(ctx, "EMA touch: empty universe, nothing to scan")
		return nil, nil
	}

	policy := cooldown.PeriodAligned{Period: 24 * time.Hour}
	threshold := settings.EMATouch.TouchThresholdPct
	period := settings.EMATouch.EMAPeriod

	var (
		alerts  []domain.Alert
		skipped int
	)
	for _, ticker := range uni.Merged() {
		// A canceled cycle dispatches nothing: candidates found so far are
		// discarded and none of them enter cooldown.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		klines, err := s.deps.fetchKlines(ctx, ticker.Symbol, emaKlineInterval, emaKlineLimit)
		if err != nil {
			skipped++
			s.deps.Logger.Warn(ctx, "EMA touch: kline fetch failed, skipping symbol",
				map[string]interface{}{"symbol": ticker.Symbol, "error": err.Error()})
			continue
		}

		ema, err := indicators.EMA(klines, period)
		if err != nil {
			// Insufficient history is an exclusion, not a failure.
			continue
		}

		price := klines[len(klines)-1].Close
		distance := math.Abs((price - ema) / ema * 100)
		if distance >= threshold {
			continue
		}
		if s.cooldown.IsSuppressed(ticker.Symbol, policy) {
			continue
		}

		direction := domain.DirectionFromBelow
		if price > ema {
			direction = domain.DirectionFromAbove
		}

		s.deps.Logger.Debug(ctx, "EMA touch hit", map[string]interface{}{
			"symbol":      ticker.Symbol,
			"distancePct": distance,
			"direction":   string(direction),
			"contextEMAs": indicators.MultiEMA(klines, emaContextPeriods...),
		})

		alerts = append(alerts, domain.Alert{
			Symbol:      ticker.Symbol,
			Strategy:    domain.StrategyEMATouch,
			Direction:   direction,
			Price:       price,
			MetricValue: distance,
			Reference:   ema,
			TriggeredAt: s.deps.Now(),
		})
	}

	alerts = bound(alerts, settings.General.MaxCoinsPerAlert)
	for _, a := range alerts {
		s.cooldown.Record(ctx, a.Symbol)
	}

	s.deps.Logger.Info(ctx, "EMA touch scan complete", map[string]interface{}{
		"universe": len(uni.Merged()), "alerts": len(alerts), "skipped": skipped})
	return alerts, nil
}
