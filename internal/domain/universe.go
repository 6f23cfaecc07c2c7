package domain

// RankedUniverse is the bounded, ranked subset of tradable symbols a strategy
// considers in one scan cycle. Produced once per cycle and never reused.
type RankedUniverse struct {
	TopGainers []TickerSnapshot // Ranked descending by 24h change
	TopLosers  []TickerSnapshot // Most negative change first
}

// Merged returns gainers followed by losers with duplicates removed. When the
// survivor count after filtering is below twice the bound the two lists may
// overlap; the merged working set still lists every symbol once.
func (u RankedUniverse) Merged() []TickerSnapshot {
	seen := make(map[string]struct{}, len(u.TopGainers)+len(u.TopLosers))
	merged := make([]TickerSnapshot, 0, len(u.TopGainers)+len(u.TopLosers))
	for _, list := range [][]TickerSnapshot{u.TopGainers, u.TopLosers} {
		for _, t := range list {
			if _, ok := seen[t.Symbol]; ok {
				continue
			}
			seen[t.Symbol] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}

// IsEmpty reports whether the universe holds no symbols at all.
func (u RankedUniverse) IsEmpty() bool {
	return len(u.TopGainers) == 0 && len(u.TopLosers) == 0
}
