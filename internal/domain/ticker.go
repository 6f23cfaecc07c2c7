package domain

// TickerSnapshot is a point-in-time view of a traded pair, produced fresh
// once per scan cycle and discarded with it.
type TickerSnapshot struct {
	Symbol         string  // Exchange pair id (e.g., "BTCUSDT")
	LastPrice      float64 // Last traded price
	Change24hPct   float64 // Signed 24h change in percent
	QuoteVolume24h float64 // 24h volume denominated in the quote currency
}
