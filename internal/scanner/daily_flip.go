package scanner

import (
	"context"
	"fmt"
	"math"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/cooldown"
	"cryptoScanBot/internal/domain"
)

const flipCooldownNamespace = "flip"

// DailyFlip alerts when a symbol's 24h change hovers near zero, i.e. the
// daily candle is about to flip sign. The direction tag records which side
// the flip is approached from.
type DailyFlip struct {
	deps     Deps
	cooldown *cooldown.Store
}

// NewDailyFlip creates the scanner and hydrates its cooldown state.
func NewDailyFlip(ctx context.Context, deps Deps) (*DailyFlip, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("daily flip scanner: %w", err)
	}
	store, err := cooldown.NewStore(ctx, flipCooldownNamespace, deps.Cooldowns, deps.Logger, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("daily flip scanner: %w", err)
	}
	return &DailyFlip{deps: deps, cooldown: store}, nil
}

// Kind returns the strategy identifier.
func (s *DailyFlip) Kind() domain.StrategyKind {
	return domain.StrategyDailyFlip
}

// Schedule reports the enabled flag and interval from the settings snapshot.
func (s *DailyFlip) Schedule(settings config.Settings) (bool, time.Duration) {
	return settings.DailyFlip.Enabled, time.Duration(settings.DailyFlip.ScanIntervalMinutes) * time.Minute
}

// Scan evaluates the merged ranked universe against the range-flip predicate.
// No historical series is needed; the 24h change from the ticker snapshot is
// the whole signal.
func (s *DailyFlip) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	uni, err := s.deps.fetchUniverse(ctx, settings.General.MinVolume24h, settings.General.TopN)
	if err != nil {
		return nil, fmt.Errorf("fetching universe: %w", err)
	}

	policy := cooldown.RollingWindow{Window: settings.RollingCooldown()}
	threshold := settings.DailyFlip.FlipThresholdPct

	var alerts []domain.Alert
	for _, ticker := range uni.Merged() {
		change := ticker.Change24hPct
		if math.Abs(change) >= threshold {
			continue
		}

		direction := domain.DirectionRedToGreen
		if change > 0 {
			direction = domain.DirectionGreenToRed
		}
		if !flipTypeWanted(settings.DailyFlip.FlipType, direction) {
			continue
		}
		if s.cooldown.IsSuppressed(ticker.Symbol, policy) {
			continue
		}

		alerts = append(alerts, domain.Alert{
			Symbol:      ticker.Symbol,
			Strategy:    domain.StrategyDailyFlip,
			Direction:   direction,
			Price:       ticker.LastPrice,
			MetricValue: change,
			TriggeredAt: s.deps.Now(),
		})
	}

	alerts = bound(alerts, settings.General.MaxCoinsPerAlert)
	for _, a := range alerts {
		s.cooldown.Record(ctx, a.Symbol)
	}

	s.deps.Logger.Info(ctx, "Daily flip scan complete", map[string]interface{}{
		"universe": len(uni.Merged()), "alerts": len(alerts)})
	return alerts, nil
}

func flipTypeWanted(flipType string, direction domain.AlertDirection) bool {
	switch flipType {
	case config.FlipTypeGreenToRed:
		return direction == domain.DirectionGreenToRed
	case config.FlipTypeRedToGreen:
		return direction == domain.DirectionRedToGreen
	default: // "both" and anything unrecognized
		return true
	}
}
