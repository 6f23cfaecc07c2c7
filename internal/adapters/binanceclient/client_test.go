package binanceclient

import (
	"context"
	"testing"
	"time"

	"cryptoScanBot/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestNew(t *testing.T) {
	t.Run("production base URL", func(t *testing.T) {
		c, err := New(Config{Logger: &mockLogger{}})
		require.NoError(t, err)
		assert.Equal(t, baseURLProduction, c.futuresClient.BaseURL)
	})

	t.Run("testnet base URL", func(t *testing.T) {
		c, err := New(Config{UseTestnet: true, Logger: &mockLogger{}})
		require.NoError(t, err)
		assert.Equal(t, baseURLTestnet, c.futuresClient.BaseURL)
	})

	t.Run("missing logger", func(t *testing.T) {
		_, err := New(Config{})
		require.Error(t, err)
	})
}

func TestHandleError(t *testing.T) {
	c, err := New(Config{Logger: &mockLogger{}})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", &common.APIError{Code: -1003, Message: "too many requests"}, ports.ErrRateLimited},
		{"timestamp out of window", &common.APIError{Code: -1021, Message: "recvWindow"}, ports.ErrTimeout},
		{"bad parameter", &common.APIError{Code: -1102, Message: "mandatory parameter"}, ports.ErrInvalidRequest},
		{"unmapped api error", &common.APIError{Code: -9999, Message: "???"}, ports.ErrExchangeUnavailable},
		{"deadline", context.DeadlineExceeded, ports.ErrTimeout},
		{"canceled", context.Canceled, ports.ErrContextCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.handleError(ctx, tt.err, "TestOp")
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, c.handleError(ctx, nil, "TestOp"))
	})
}

func TestTranslatePriceChangeStats(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		snap, err := translatePriceChangeStats(&futures.PriceChangeStats{
			Symbol:             "BTCUSDT",
			LastPrice:          "65000.50",
			PriceChangePercent: "-2.34",
			QuoteVolume:        "1234567890.12",
		})
		require.NoError(t, err)
		assert.Equal(t, "BTCUSDT", snap.Symbol)
		assert.Equal(t, 65000.50, snap.LastPrice)
		assert.Equal(t, -2.34, snap.Change24hPct)
		assert.Equal(t, 1234567890.12, snap.QuoteVolume24h)
	})

	t.Run("unparseable field", func(t *testing.T) {
		_, err := translatePriceChangeStats(&futures.PriceChangeStats{
			Symbol: "BTCUSDT", LastPrice: "n/a", PriceChangePercent: "1", QuoteVolume: "1",
		})
		require.Error(t, err)
	})

	t.Run("nil stats", func(t *testing.T) {
		_, err := translatePriceChangeStats(nil)
		require.Error(t, err)
	})
}

func TestTranslateBinanceKline(t *testing.T) {
	openTime := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		k, err := translateBinanceKline(&futures.Kline{
			OpenTime:  openTime.UnixMilli(),
			CloseTime: openTime.Add(24 * time.Hour).UnixMilli(),
			Open:      "100.1",
			High:      "110.2",
			Low:       "99.3",
			Close:     "105.4",
			Volume:    "42000",
		}, "BTCUSDT", "1d")
		require.NoError(t, err)
		assert.Equal(t, "BTCUSDT", k.Symbol)
		assert.Equal(t, "1d", k.Interval)
		assert.True(t, openTime.Equal(k.OpenTime))
		assert.Equal(t, 105.4, k.Close)
		assert.Equal(t, 110.2, k.High)
	})

	t.Run("unparseable close", func(t *testing.T) {
		_, err := translateBinanceKline(&futures.Kline{
			Open: "1", High: "1", Low: "1", Close: "bad", Volume: "1",
		}, "BTCUSDT", "1d")
		require.Error(t, err)
	})

	t.Run("nil kline", func(t *testing.T) {
		_, err := translateBinanceKline(nil, "BTCUSDT", "1d")
		require.Error(t, err)
	})
}
