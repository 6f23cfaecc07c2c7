package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/cooldown"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/universe"
)

const (
	gainersCooldownNamespace = "gainers"
	losersCooldownNamespace  = "losers"

	// SubKind values for the volume scanner's two alert streams.
	SubKindGainer = "gainer"
	SubKindLoser  = "loser"
)

// Volume alerts on outsized 24h movers: gainers above one threshold, losers
// below another, each stream with its own cooldown namespace so a symbol
// flapping between the two never suppresses the opposite alert.
//
// The configured volume-spike threshold is an unimplemented strategy slot
// carried in the settings document; no spike detection runs yet.
type Volume struct {
	deps    Deps
	gainers *cooldown.Store
	losers  *cooldown.Store
}

// NewVolume creates the scanner and hydrates both cooldown namespaces.
func NewVolume(ctx context.Context, deps Deps) (*Volume, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("volume scanner: %w", err)
	}
	gainers, err := cooldown.NewStore(ctx, gainersCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("volume scanner: %w", err)
	}
	losers, err := cooldown.NewStore(ctx, losersCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("volume scanner: %w", err)
	}
	return &Volume{deps: deps, gainers: gainers, losers: losers}, nil
}

// Kind returns the strategy identifier.
func (s *Volume) Kind() domain.StrategyKind {
	return domain.StrategyVolume
}

// Schedule reports the enabled flag and interval from the settings snapshot.
func (s *Volume) Schedule(settings config.Settings) (bool, time.Duration) {
	return settings.Volume.Enabled, time.Duration(settings.Volume.ScanIntervalMinutes) * time.Minute
}

// Scan evaluates every liquidity-filtered ticker; no historical series is
// fetched, so the working set does not need the top-N bound.
func (s *Volume) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	tickers, err := s.deps.fetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tickers: %w", err)
	}
	survivors := universe.Filter(tickers, settings.General.MinVolume24h)

	policy := cooldown.RollingWindow{Window: settings.RollingCooldown()}

	var gainerAlerts, loserAlerts []domain.Alert
	for _, ticker := range survivors {
		change := ticker.Change24hPct

		if settings.Volume.GainersEnabled && change > settings.Volume.GainersThresholdPct &&
			!s.gainers.IsSuppressed(ticker.Symbol, policy) {
			gainerAlerts = append(gainerAlerts, domain.Alert{
				Symbol:      ticker.Symbol,
				Strategy:    domain.StrategyVolume,
				SubKind:     SubKindGainer,
				Direction:   domain.DirectionGainer,
				Price:       ticker.LastPrice,
				MetricValue: change,
				TriggeredAt: s.deps.Now(),
			})
		}

		if settings.Volume.LosersEnabled && change < -settings.Volume.LosersThresholdPct &&
			!s.losers.IsSuppressed(ticker.Symbol, policy) {
			loserAlerts = append(loserAlerts, domain.Alert{
				Symbol:      ticker.Symbol,
				Strategy:    domain.StrategyVolume,
				SubKind:     SubKindLoser,
				Direction:   domain.DirectionLoser,
				Price:       ticker.LastPrice,
				MetricValue: change,
				TriggeredAt: s.deps.Now(),
			})
		}
	}

	// Strongest movers first, symbol order on ties for determinism.
	sort.Slice(gainerAlerts, func(i, j int) bool {
		if gainerAlerts[i].MetricValue != gainerAlerts[j].MetricValue {
			return gainerAlerts[i].MetricValue > gainerAlerts[j].MetricValue
		}
		return gainerAlerts[i].Symbol < gainerAlerts[j].Symbol
	})
	sort.Slice(loserAlerts, func(i, j int) bool {
		if loserAlerts[i].MetricValue != loserAlerts[j].MetricValue {
			return loserAlerts[i].MetricValue < loserAlerts[j].MetricValue
		}
		return loserAlerts[i].Symbol < loserAlerts[j].Symbol
	})

	gainerAlerts = bound(gainerAlerts, settings.General.MaxCoinsPerAlert)
	loserAlerts = bound(loserAlerts, settings.General.MaxCoinsPerAlert)

	for _, a := range gainerAlerts {
		s.gainers.Record(ctx, a.Symbol)
	}
	for _, a := range loserAlerts {
		s.losers.Record(ctx, a.Symbol)
	}

	s.deps.Logger.Info(ctx, "Volume scan complete", map[string]interface{}{
		"survivors": len(survivors), "gainers": len(gainerAlerts), "losers": len(loserAlerts)})
	return append(gainerAlerts, loserAlerts...), nil
}
