package cooldown

import "time"

// Policy decides whether a previously recorded alert still suppresses a new
// one. The two variants found across strategies are intentional per-strategy
// choices, selected explicitly rather than hard-coded into the store.
type Policy interface {
	Suppressed(lastAlert, now time.Time) bool
}

// RollingWindow suppresses while less than Window has elapsed since the last
// alert. The boundary is exclusive: at exactly lastAlert+Window the symbol is
// no longer suppressed.
type RollingWindow struct {
	Window time.Duration
}

func (p RollingWindow) Suppressed(lastAlert, now time.Time) bool {
	if p.Window <= 0 {
		return false
	}
	return now.Sub(lastAlert) < p.Window
}

// PeriodAligned suppresses only while the last alert falls within the same
// UTC-aligned period as now (e.g. the same calendar day for Period=24h).
// Crossing a period boundary always clears suppression regardless of elapsed
// wall-clock time, so at most one alert fires per symbol per natural candle.
type PeriodAligned struct {
	Period time.Duration
}

func (p PeriodAligned) Suppressed(lastAlert, now time.Time) bool {
	if p.Period <= 0 {
		return false
	}
	return lastAlert.UTC().Truncate(p.Period).Equal(now.UTC().Truncate(p.Period))
}
