package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRollingWindow(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := RollingWindow{Window: 2 * time.Hour}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"immediately after", base.Add(time.Second), true},
		{"just inside the window", base.Add(2*time.Hour - time.Nanosecond), true},
		{"exactly at the boundary", base.Add(2 * time.Hour), false},
		{"past the window", base.Add(3 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Suppressed(base, tt.now))
		})
	}

	t.Run("non-positive window never suppresses", func(t *testing.T) {
		assert.False(t, RollingWindow{}.Suppressed(base, base.Add(time.Second)))
	})
}

func TestPeriodAligned(t *testing.T) {
	p := PeriodAligned{Period: 24 * time.Hour}
	lastAlert := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)

	t.Run("same UTC day suppresses even one minute later", func(t *testing.T) {
		assert.True(t, p.Suppressed(lastAlert.Add(-23*time.Hour), lastAlert))
	})

	t.Run("crossing the day boundary clears after two minutes", func(t *testing.T) {
		assert.False(t, p.Suppressed(lastAlert, lastAlert.Add(2*time.Minute)))
	})

	t.Run("within the same day", func(t *testing.T) {
		morning := time.Date(2025, 6, 1, 0, 5, 0, 0, time.UTC)
		assert.True(t, p.Suppressed(morning, lastAlert))
	})

	t.Run("zone offsets compare on UTC truncation", func(t *testing.T) {
		zone := time.FixedZone("UTC+3", 3*3600)
		// 2025-06-02 01:30 +03:00 is still 2025-06-01 in UTC.
		inZone := time.Date(2025, 6, 2, 1, 30, 0, 0, zone)
		assert.True(t, p.Suppressed(lastAlert, inZone))
	})

	t.Run("non-positive period never suppresses", func(t *testing.T) {
		assert.False(t, PeriodAligned{}.Suppressed(lastAlert, lastAlert))
	})
}
