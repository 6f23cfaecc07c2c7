package domain

import "time"

// StrategyKind identifies one independent alerting rule. Each kind owns its
// own schedule, thresholds, and cooldown namespace.
type StrategyKind string

const (
	StrategyEMATouch  StrategyKind = "ema_touch"
	StrategyDailyFlip StrategyKind = "daily_flip"
	StrategyVolume    StrategyKind = "volume_scanner"
	StrategyATHATL    StrategyKind = "ath_atl"
)

// AlertDirection tags which side of the threshold a symbol approached from.
type AlertDirection string

const (
	DirectionFromAbove  AlertDirection = "from above"
	DirectionFromBelow  AlertDirection = "from below"
	DirectionGreenToRed AlertDirection = "green_to_red"
	DirectionRedToGreen AlertDirection = "red_to_green"
	DirectionGainer     AlertDirection = "gainer"
	DirectionLoser      AlertDirection = "loser"
	DirectionNearHigh   AlertDirection = "near_ath"
	DirectionNearLow    AlertDirection = "near_atl"
)

// Alert is a finalized, cooldown-cleared alert ready for dispatch. It carries
// enough data to compose a human-readable caption; nothing about it persists
// beyond the scan cycle except the history record written after dispatch.
type Alert struct {
	Symbol      string         `json:"symbol"`
	Strategy    StrategyKind   `json:"strategy"`
	SubKind     string         `json:"sub_kind,omitempty"` // Cooldown sub-namespace ("gainer", "ath", ...)
	Direction   AlertDirection `json:"direction"`
	Price       float64        `json:"price"`
	MetricValue float64        `json:"metric_value"` // Strategy metric: EMA distance %, 24h change %, extremum distance %
	Reference   float64        `json:"reference"`    // Reference level the metric is measured against (EMA value, ATH, ATL)
	NewExtremum bool           `json:"new_extremum"` // Price at or beyond the lookback high/low
	TriggeredAt time.Time      `json:"triggered_at"`
}
