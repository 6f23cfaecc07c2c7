package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cryptoScanBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleAlert(symbol string, triggeredAt time.Time) *domain.Alert {
	return &domain.Alert{
		Symbol:      symbol,
		Strategy:    domain.StrategyEMATouch,
		Direction:   domain.DirectionFromBelow,
		Price:       101.5,
		MetricValue: 1.2,
		Reference:   100.3,
		TriggeredAt: triggeredAt,
	}
}

func TestRecordAlert(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	id, err := repo.RecordAlert(ctx, sampleAlert("BTCUSDT", now))
	require.NoError(t, err)
	assert.Positive(t, id)

	id2, err := repo.RecordAlert(ctx, sampleAlert("ETHUSDT", now))
	require.NoError(t, err)
	assert.Greater(t, id2, id)
}

func TestRecentAlerts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, symbol := range []string{"AAAUSDT", "BBBUSDT", "CCCUSDT"} {
		_, err := repo.RecordAlert(ctx, sampleAlert(symbol, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	extremum := &domain.Alert{
		Symbol:      "DDDUSDT",
		Strategy:    domain.StrategyATHATL,
		SubKind:     "ath",
		Direction:   domain.DirectionNearHigh,
		Price:       500,
		MetricValue: 0.2,
		Reference:   501,
		NewExtremum: true,
		TriggeredAt: base.Add(10 * time.Minute),
	}
	_, err := repo.RecordAlert(ctx, extremum)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		alerts, err := repo.RecentAlerts(ctx, 10)
		require.NoError(t, err)
		require.Len(t, alerts, 4)
		assert.Equal(t, "DDDUSDT", alerts[0].Symbol)
		assert.Equal(t, "CCCUSDT", alerts[1].Symbol)
		assert.Equal(t, "AAAUSDT", alerts[3].Symbol)
	})

	t.Run("limit bounds the result", func(t *testing.T) {
		alerts, err := repo.RecentAlerts(ctx, 2)
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, "DDDUSDT", alerts[0].Symbol)
	})

	t.Run("round-trips all fields", func(t *testing.T) {
		alerts, err := repo.RecentAlerts(ctx, 1)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		got := alerts[0]
		assert.Equal(t, domain.StrategyATHATL, got.Strategy)
		assert.Equal(t, "ath", got.SubKind)
		assert.Equal(t, domain.DirectionNearHigh, got.Direction)
		assert.True(t, got.NewExtremum)
		assert.Equal(t, 501.0, got.Reference)
		assert.True(t, extremum.TriggeredAt.Equal(got.TriggeredAt))
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		alerts, err := repo.RecentAlerts(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, alerts, 4)
	})
}

func TestRecentAlertsEmpty(t *testing.T) {
	repo := setupTestDB(t)

	alerts, err := repo.RecentAlerts(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestNewRepositoryRequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	require.Error(t, err)
}
