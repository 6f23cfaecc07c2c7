package ports

import (
	"context"

	"cryptoScanBot/internal/domain"
)

// MarketDataClient defines the interface for fetching market snapshots and
// historical series from an exchange. This abstraction decouples the scanners
// from a specific exchange implementation.
//
// Both operations are network-bound and may fail or time out; callers must
// treat failure as "skip this symbol/cycle", never as fatal.
type MarketDataClient interface {
	// GetTickers retrieves a point-in-time 24h snapshot for every traded pair.
	GetTickers(ctx context.Context) ([]domain.TickerSnapshot, error)

	// GetKlines retrieves historical klines/candlestick data for the given symbol,
	// ordered ascending by open time.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error
}
