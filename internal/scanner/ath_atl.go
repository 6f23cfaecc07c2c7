package scanner

import (
	"context"
	"fmt"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/cooldown"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/indicators"
)

const (
	athCooldownNamespace = "ath"
	atlCooldownNamespace = "atl"

	// SubKind values for the extremum scanner's two alert streams.
	SubKindATH = "ath"
	SubKindATL = "atl"

	athKlineInterval = "1d"
	// Exchange-side cap on a single kline request.
	maxKlineLimit = 1000
)

// ATHATL alerts when a symbol trades within a configured distance of its
// lookback-window high or low, flagging a fresh extremum when the price is at
// or beyond it. Highs and lows run as separate streams with separate
// cooldown namespaces.
type ATHATL struct {
	deps Deps
	ath  *cooldown.Store
	atl  *cooldown.Store
}

// NewATHATL creates the scanner and hydrates both cooldown namespaces.
func NewATHATL(ctx context.Context, deps Deps) (*ATHATL, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("ath/atl scanner: %w", err)
	}
	ath, err := cooldown.NewStore(ctx, athCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("ath/atl scanner: %w", err)
	}
	atl, err := cooldown.NewStore(ctx, atlCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("ath/atl scanner: %w", err)
	}
	return &ATHATL{deps: deps, ath: ath, atl: atl}, nil
}

// Kind returns the strategy identifier.
func (s *ATHATL) Kind() domain.StrategyKind {
	return domain.StrategyATHATL
}

// Schedule reports the enabled flag and interval from the settings snapshot.
func (s *ATHATL) Schedule(settings config.Settings) (bool, time.Duration) {
	return settings.ATHATL.Enabled, time.Duration(settings.ATHATL.ScanIntervalMinutes) * time.Minute
}

// Scan evaluates the merged ranked universe against the extremum-proximity
// predicate over daily candles.
func (s *ATHATL) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	uni, err := s.deps.fetchUniverse(ctx, settings.General.MinVolume24h, settings.General.TopN)
	if err != nil {
		return nil, fmt.Errorf("fetching universe: %w", err)
	}
	if uni.IsEmpty() {
		s.deps.Logger.Debug(ctx, "ATH/ATL: empty universe, nothing to scan")
		return nil, nil
	}

	policy := cooldown.RollingWindow{Window: time.Duration(settings.ATHATL.CooldownHours) * time.Hour}
	threshold := settings.ATHATL.ProximityThresholdPct
	limit := settings.ATHATL.LookbackDays
	if limit > maxKlineLimit {
		limit = maxKlineLimit
	}

	var (
		athAlerts []domain.Alert
		atlAlerts []domain.Alert
		skipped   int
	)
	for _, ticker := range uni.Merged() {
		// Same discard-on-cancel contract as the EMA scanner: a canceled
		// cycle never yields a partial batch.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		klines, err := s.deps.fetchKlines(ctx, ticker.Symbol, athKlineInterval, limit)
		if err != nil {
			skipped++
			s.deps.Logger.Warn(ctx, "ATH/ATL: kline fetch failed, skipping symbol",
				map[string]interface{}{"symbol": ticker.Symbol, "error": err.Error()})
			continue
		}

		ext, err := indicators.RangeExtremum(klines)
		if err != nil {
			// Too little history to call anything an extremum.
			continue
		}

		price := ticker.LastPrice

		if settings.ATHATL.ATHEnabled {
			if dist := ext.DistanceFromHigh(price); dist <= threshold &&
				!s.ath.IsSuppressed(ticker.Symbol, policy) {
				athAlerts = append(athAlerts, domain.Alert{
					Symbol:      ticker.Symbol,
					Strategy:    domain.StrategyATHATL,
					SubKind:     SubKindATH,
					Direction:   domain.DirectionNearHigh,
					Price:       price,
					MetricValue: dist,
					Reference:   ext.High,
					NewExtremum: price >= ext.High,
					TriggeredAt: s.deps.Now(),
				})
			}
		}

		if settings.ATHATL.ATLEnabled {
			if dist := ext.DistanceFromLow(price); dist <= threshold &&
				!s.atl.IsSuppressed(ticker.Symbol, policy) {
				atlAlerts = append(atlAlerts, domain.Alert{
					Symbol:      ticker.Symbol,
					Strategy:    domain.StrategyATHATL,
					SubKind:     SubKindATL,
					Direction:   domain.DirectionNearLow,
					Price:       price,
					MetricValue: dist,
					Reference:   ext.Low,
					NewExtremum: price <= ext.Low,
					TriggeredAt: s.deps.Now(),
				})
			}
		}
	}

	athAlerts = bound(athAlerts, settings.General.MaxCoinsPerAlert)
	atlAlerts = bound(atlAlerts, settings.General.MaxCoinsPerAlert)

	for _, a := range athAlerts {
		s.ath.Record(ctx, a.Symbol)
	}
	for _, a := range atlAlerts {
		s.atl.Record(ctx, a.Symbol)
	}

	s.deps.Logger.Info(ctx, "ATH/ATL scan complete", map[string]interface{}{
		"universe": len(uni.Merged()), "ath": len(athAlerts), "atl": len(atlAlerts), "skipped": skipped})
	return append(athAlerts, atlAlerts...), nil
}
