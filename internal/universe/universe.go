// Package universe ranks raw ticker snapshots into the bounded "interesting
// set" a strategy evaluates in one scan cycle.
package universe

import (
	"sort"
	"strings"

	"cryptoScanBot/internal/domain"
)

// QuoteSuffix is the tradable-pair naming convention the selector accepts.
const QuoteSuffix = "USDT"

// Select filters the snapshot set by the quote-currency suffix and a minimum
// quote volume, ranks survivors descending by 24h change, and returns the top
// and bottom topN entries. Ties are broken by symbol lexical order so the
// result is deterministic for a given input. Losers are ordered most negative
// first. When fewer than 2*topN symbols survive, the two lists may overlap,
// but a symbol never appears twice within the same list.
//
// Malformed or empty input degrades to an empty universe rather than an
// error; one bad cycle must not take the scheduler down.
func Select(tickers []domain.TickerSnapshot, minQuoteVolume float64, topN int) domain.RankedUniverse {
	if topN <= 0 {
		return domain.RankedUniverse{}
	}

	survivors := Filter(tickers, minQuoteVolume)
	if len(survivors) == 0 {
		return domain.RankedUniverse{}
	}

	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].Change24hPct != survivors[j].Change24hPct {
			return survivors[i].Change24hPct > survivors[j].Change24hPct
		}
		return survivors[i].Symbol < survivors[j].Symbol
	})

	n := topN
	if n > len(survivors) {
		n = len(survivors)
	}

	gainers := make([]domain.TickerSnapshot, n)
	copy(gainers, survivors[:n])

	// Last n entries reversed so the most negative change comes first.
	losers := make([]domain.TickerSnapshot, n)
	for i := 0; i < n; i++ {
		losers[i] = survivors[len(survivors)-1-i]
	}

	return domain.RankedUniverse{TopGainers: gainers, TopLosers: losers}
}

// Filter applies the tradable-pair suffix convention and the quote-volume
// liquidity floor, dropping duplicate symbols. Input order is preserved.
func Filter(tickers []domain.TickerSnapshot, minQuoteVolume float64) []domain.TickerSnapshot {
	survivors := make([]domain.TickerSnapshot, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, QuoteSuffix) {
			continue
		}
		if t.QuoteVolume24h < minQuoteVolume {
			continue
		}
		if _, dup := seen[t.Symbol]; dup {
			continue
		}
		seen[t.Symbol] = struct{}{}
		survivors = append(survivors, t)
	}
	return survivors
}
