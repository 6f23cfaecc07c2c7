package config

import (
	"fmt"
	"strings"
	"time"
)

// Flip type selectors for the daily flip scanner.
const (
	FlipTypeBoth       = "both"
	FlipTypeGreenToRed = "green_to_red"
	FlipTypeRedToGreen = "red_to_green"
)

// Settings is the runtime scanner configuration. It is persisted as a JSON
// document, served and updated through the control API, and read as an
// immutable value snapshot at the start of each scan cycle.
type Settings struct {
	EMATouch  EMATouchSettings  `json:"ema_touch"`
	DailyFlip DailyFlipSettings `json:"daily_flip"`
	Volume    VolumeSettings    `json:"volume_scanner"`
	ATHATL    ATHATLSettings    `json:"ath_atl"`
	General   GeneralSettings   `json:"general"`
}

// EMATouchSettings configures the EMA-proximity scanner.
type EMATouchSettings struct {
	Enabled             bool    `json:"enabled"`
	EMAPeriod           int     `json:"ema_period"`            // e.g., 60
	TouchThresholdPct   float64 `json:"ema_touch_threshold"`   // Distance threshold in %
	ScanIntervalMinutes int     `json:"scan_interval_minutes"`
}

// DailyFlipSettings configures the range-flip scanner.
type DailyFlipSettings struct {
	Enabled             bool    `json:"enabled"`
	FlipThresholdPct    float64 `json:"flip_threshold"` // Alert when |24h change| is below this
	FlipType            string  `json:"flip_type"`      // both | green_to_red | red_to_green
	ScanIntervalMinutes int     `json:"scan_interval_minutes"`
}

// VolumeSettings configures the volume/momentum scanner.
// VolumeSpikeThresholdPct is a declared but still unimplemented strategy slot:
// the field is kept so saved configurations round-trip, but no spike detection
// runs yet.
type VolumeSettings struct {
	Enabled                 bool    `json:"enabled"`
	VolumeSpikeThresholdPct float64 `json:"volume_spike_threshold"`
	GainersEnabled          bool    `json:"gainers_enabled"`
	GainersThresholdPct     float64 `json:"gainers_threshold"`
	LosersEnabled           bool    `json:"losers_enabled"`
	LosersThresholdPct      float64 `json:"losers_threshold"`
	ScanIntervalMinutes     int     `json:"scan_interval_minutes"`
}

// ATHATLSettings configures the extremum-proximity scanner.
type ATHATLSettings struct {
	Enabled               bool    `json:"enabled"`
	ATHEnabled            bool    `json:"ath_enabled"`
	ATLEnabled            bool    `json:"atl_enabled"`
	ProximityThresholdPct float64 `json:"proximity_threshold"`
	LookbackDays          int     `json:"lookback_days"`
	ScanIntervalMinutes   int     `json:"scan_interval_minutes"`
	CooldownHours         int     `json:"cooldown_hours"`
}

// GeneralSettings applies across scanners.
type GeneralSettings struct {
	MinVolume24h     float64 `json:"min_volume_24h"`      // Quote-volume liquidity floor
	CooldownHours    int     `json:"cooldown_hours"`      // Rolling cooldown for scanners without their own
	MaxCoinsPerAlert int     `json:"max_coins_per_alert"`
	TopN             int     `json:"top_n"` // Gainer/loser bound of the ranked universe
}

// DefaultSettings returns the shipped configuration.
func DefaultSettings() Settings {
	return Settings{
		EMATouch: EMATouchSettings{
			Enabled:             true,
			EMAPeriod:           60,
			TouchThresholdPct:   2.0,
			ScanIntervalMinutes: 30,
		},
		DailyFlip: DailyFlipSettings{
			Enabled:             true,
			FlipThresholdPct:    2.0,
			FlipType:            FlipTypeBoth,
			ScanIntervalMinutes: 30,
		},
		Volume: VolumeSettings{
			Enabled:                 true,
			VolumeSpikeThresholdPct: 200,
			GainersEnabled:          true,
			GainersThresholdPct:     10,
			LosersEnabled:           true,
			LosersThresholdPct:      10,
			ScanIntervalMinutes:     30,
		},
		ATHATL: ATHATLSettings{
			Enabled:               true,
			ATHEnabled:            true,
			ATLEnabled:            true,
			ProximityThresholdPct: 1.0,
			LookbackDays:          365,
			ScanIntervalMinutes:   60,
			CooldownHours:         24,
		},
		General: GeneralSettings{
			MinVolume24h:     10_000_000,
			CooldownHours:    2,
			MaxCoinsPerAlert: 10,
			TopN:             20,
		},
	}
}

// Validate checks the whole document. An invalid document is rejected as a
// unit so a runtime update can never be partially applied.
func (s Settings) Validate() error {
	var errs []string

	if s.EMATouch.EMAPeriod <= 0 {
		errs = append(errs, "ema_touch.ema_period must be positive")
	}
	if s.EMATouch.TouchThresholdPct <= 0 {
		errs = append(errs, "ema_touch.ema_touch_threshold must be positive")
	}
	if s.EMATouch.ScanIntervalMinutes <= 0 {
		errs = append(errs, "ema_touch.scan_interval_minutes must be positive")
	}

	if s.DailyFlip.FlipThresholdPct <= 0 {
		errs = append(errs, "daily_flip.flip_threshold must be positive")
	}
	switch s.DailyFlip.FlipType {
	case FlipTypeBoth, FlipTypeGreenToRed, FlipTypeRedToGreen:
	default:
		errs = append(errs, fmt.Sprintf("daily_flip.flip_type must be one of %s|%s|%s", FlipTypeBoth, FlipTypeGreenToRed, FlipTypeRedToGreen))
	}
	if s.DailyFlip.ScanIntervalMinutes <= 0 {
		errs = append(errs, "daily_flip.scan_interval_minutes must be positive")
	}

	if s.Volume.GainersThresholdPct <= 0 {
		errs = append(errs, "volume_scanner.gainers_threshold must be positive")
	}
	if s.Volume.LosersThresholdPct <= 0 {
		errs = append(errs, "volume_scanner.losers_threshold must be positive")
	}
	if s.Volume.ScanIntervalMinutes <= 0 {
		errs = append(errs, "volume_scanner.scan_interval_minutes must be positive")
	}

	if s.ATHATL.ProximityThresholdPct <= 0 {
		errs = append(errs, "ath_atl.proximity_threshold must be positive")
	}
	if s.ATHATL.LookbackDays < 30 {
		errs = append(errs, "ath_atl.lookback_days must be at least 30")
	}
	if s.ATHATL.ScanIntervalMinutes <= 0 {
		errs = append(errs, "ath_atl.scan_interval_minutes must be positive")
	}
	if s.ATHATL.CooldownHours < 0 {
		errs = append(errs, "ath_atl.cooldown_hours cannot be negative")
	}

	if s.General.MinVolume24h < 0 {
		errs = append(errs, "general.min_volume_24h cannot be negative")
	}
	if s.General.CooldownHours < 0 {
		errs = append(errs, "general.cooldown_hours cannot be negative")
	}
	if s.General.MaxCoinsPerAlert <= 0 {
		errs = append(errs, "general.max_coins_per_alert must be positive")
	}
	if s.General.TopN <= 0 {
		errs = append(errs, "general.top_n must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("settings validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RollingCooldown returns the shared rolling cooldown window.
func (s Settings) RollingCooldown() time.Duration {
	return time.Duration(s.General.CooldownHours) * time.Hour
}
