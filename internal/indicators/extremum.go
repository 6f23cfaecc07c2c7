package indicators

import (
	"fmt"

	"cryptoScanBot/internal/domain"
)

// minExtremumSeries is the minimum number of candles required before a range
// extremum is considered meaningful. Below this the computation fails rather
// than returning a misleading high/low.
const minExtremumSeries = 30

// Extremum holds the range extrema of a candle series over its full lookback
// window.
type Extremum struct {
	High float64 // max(candle.High)
	Low  float64 // min(candle.Low)
}

// RangeExtremum computes the highest high and lowest low over the series.
func RangeExtremum(klines []*domain.Kline) (Extremum, error) {
	if len(klines) < minExtremumSeries {
		return Extremum{}, fmt.Errorf("not enough data (%d) for range extremum, need at least %d", len(klines), minExtremumSeries)
	}

	ext := Extremum{High: klines[0].High, Low: klines[0].Low}
	for _, k := range klines[1:] {
		if k.High > ext.High {
			ext.High = k.High
		}
		if k.Low < ext.Low {
			ext.Low = k.Low
		}
	}
	return ext, nil
}

// DistanceFromHigh returns how far below the range high the price sits,
// in percent of the high. Negative when the price trades above the high.
func (e Extremum) DistanceFromHigh(price float64) float64 {
	return (e.High - price) / e.High * 100
}

// DistanceFromLow returns how far above the range low the price sits,
// in percent of the low. Negative when the price trades below the low.
func (e Extremum) DistanceFromLow(price float64) float64 {
	return (price - e.Low) / e.Low * 100
}
