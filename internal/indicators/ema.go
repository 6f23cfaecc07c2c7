package indicators

import (
	"fmt"

	"cryptoScanBot/internal/domain"
)

// EMA computes the Exponential Moving Average of the closing prices.
// The seed value is the arithmetic mean of the first 'period' closes; each
// subsequent close is folded in as ema = (close-ema)*multiplier + ema with
// multiplier = 2/(period+1), walking the series in ascending time order.
// The result depends only on the given series, never on leading history.
func EMA(klines []*domain.Kline, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("EMA period must be positive, got %d", period)
	}
	if len(klines) < period {
		return 0, fmt.Errorf("not enough data (%d) to calculate EMA for period %d", len(klines), period)
	}

	// Seed with the SMA of the first 'period' closes.
	var sum float64
	for _, k := range klines[:period] {
		sum += k.Close
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for _, k := range klines[period:] {
		ema = (k.Close-ema)*multiplier + ema
	}
	return ema, nil
}

// MultiEMA computes one EMA per requested period over the same series.
// Each period is an independent computation; a period longer than the series
// is reported as missing in the result rather than failing the whole set.
func MultiEMA(klines []*domain.Kline, periods ...int) map[int]float64 {
	result := make(map[int]float64, len(periods))
	for _, p := range periods {
		ema, err := EMA(klines, p)
		if err != nil {
			continue
		}
		result[p] = ema
	}
	return result
}
