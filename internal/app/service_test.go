package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"cryptoScanBot/config"
	"cryptoScanBot/internal/domain"
	"cryptoScanBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockDispatcher struct {
	batches [][]domain.Alert
	err     error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, alerts []domain.Alert) error {
	m.batches = append(m.batches, alerts)
	return m.err
}

type mockHistory struct {
	recorded []domain.Alert
	err      error
}

func (m *mockHistory) RecordAlert(ctx context.Context, alert *domain.Alert) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.recorded = append(m.recorded, *alert)
	return int64(len(m.recorded)), nil
}

func (m *mockHistory) RecentAlerts(ctx context.Context, limit int) ([]*domain.Alert, error) {
	return nil, nil
}

// stubScanner is a canned-response scanner.
type stubScanner struct {
	kind     domain.StrategyKind
	enabled  bool
	interval time.Duration
	alerts   []domain.Alert
	scanErr  error
	scans    int
}

func (s *stubScanner) Kind() domain.StrategyKind { return s.kind }

func (s *stubScanner) Schedule(settings config.Settings) (bool, time.Duration) {
	return s.enabled, s.interval
}

func (s *stubScanner) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	s.scans++
	return s.alerts, s.scanErr
}

func testStore(t *testing.T) *config.Store {
	t.Helper()
	store, err := config.NewStore(filepath.Join(t.TempDir(), "settings.json"), &mockLogger{})
	require.NoError(t, err)
	return store
}

func TestNewScanService(t *testing.T) {
	store := testStore(t)
	sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute}

	t.Run("valid", func(t *testing.T) {
		svc, err := NewScanService(store, &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
		require.NoError(t, err)
		assert.Equal(t, []domain.StrategyKind{domain.StrategyEMATouch}, svc.Kinds())
	})

	t.Run("rejects duplicate kinds", func(t *testing.T) {
		_, err := NewScanService(store, &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc, sc)
		require.Error(t, err)
	})

	t.Run("rejects empty registry", func(t *testing.T) {
		_, err := NewScanService(store, &mockDispatcher{}, &mockHistory{}, &mockLogger{})
		require.Error(t, err)
	})

	t.Run("rejects missing dependencies", func(t *testing.T) {
		_, err := NewScanService(nil, &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
		require.Error(t, err)
	})
}

func TestTrigger(t *testing.T) {
	ctx := context.Background()

	alerts := []domain.Alert{
		{Symbol: "BTCUSDT", Strategy: domain.StrategyEMATouch},
		{Symbol: "ETHUSDT", Strategy: domain.StrategyEMATouch},
	}

	t.Run("runs a cycle and reports the batch size", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute, alerts: alerts}
		dispatcher := &mockDispatcher{}
		history := &mockHistory{}
		svc, err := NewScanService(testStore(t), dispatcher, history, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, dispatcher.batches, 1)
		assert.Len(t, dispatcher.batches[0], 2)
		assert.Len(t, history.recorded, 2)
	})

	t.Run("unknown scanner", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute}
		svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
		require.NoError(t, err)

		_, err = svc.Trigger(ctx, "no_such_scanner")
		require.Error(t, err)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("disabled scanner yields zero without error", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: false, interval: time.Minute, alerts: alerts}
		svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, sc.scans)
	})

	t.Run("scan failure yields zero alerts", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute, scanErr: errors.New("exchange down")}
		svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("dispatch failure still records history", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute, alerts: alerts}
		history := &mockHistory{}
		svc, err := NewScanService(testStore(t), &mockDispatcher{err: errors.New("telegram down")}, history, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, history.recorded, 2)
	})

	t.Run("history failure does not fail the cycle", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute, alerts: alerts}
		svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{err: errors.New("db locked")}, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("empty batch skips dispatch", func(t *testing.T) {
		sc := &stubScanner{kind: domain.StrategyEMATouch, enabled: true, interval: time.Minute}
		dispatcher := &mockDispatcher{}
		svc, err := NewScanService(testStore(t), dispatcher, &mockHistory{}, &mockLogger{}, sc)
		require.NoError(t, err)

		count, err := svc.Trigger(ctx, domain.StrategyEMATouch)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, dispatcher.batches)
	})
}

// blockingScanner parks inside Scan until released, reporting every cycle
// start and the peak number of concurrent cycles.
type blockingScanner struct {
	kind      domain.StrategyKind
	started   chan struct{}
	release   chan struct{}
	active    int32
	maxActive int32
}

func (s *blockingScanner) Kind() domain.StrategyKind { return s.kind }

func (s *blockingScanner) Schedule(settings config.Settings) (bool, time.Duration) {
	return true, time.Hour
}

func (s *blockingScanner) Scan(ctx context.Context, settings config.Settings) ([]domain.Alert, error) {
	cur := atomic.AddInt32(&s.active, 1)
	if cur > atomic.LoadInt32(&s.maxActive) {
		atomic.StoreInt32(&s.maxActive, cur)
	}
	s.started <- struct{}{}
	<-s.release
	atomic.AddInt32(&s.active, -1)
	return nil, nil
}

func TestTriggerSerializedWithTimedCycle(t *testing.T) {
	sc := &blockingScanner{
		kind:    domain.StrategyVolume,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	// The timed loop's first cycle is now parked inside Scan.
	<-sc.started

	done := make(chan error, 1)
	go func() {
		_, err := svc.Trigger(ctx, domain.StrategyVolume)
		done <- err
	}()

	// The manual cycle must not begin while the timed cycle holds the lock.
	select {
	case <-sc.started:
		t.Fatal("manual cycle started while a timed cycle was still running")
	case <-time.After(100 * time.Millisecond):
	}

	// Release the timed cycle; only then does the manual one begin.
	sc.release <- struct{}{}
	<-sc.started
	sc.release <- struct{}{}

	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sc.maxActive), "cycles for one scanner must be strictly sequential")

	cancel()
	svc.Wait()
}

func TestStartAndStop(t *testing.T) {
	sc := &stubScanner{kind: domain.StrategyDailyFlip, enabled: true, interval: time.Hour}
	svc, err := NewScanService(testStore(t), &mockDispatcher{}, &mockHistory{}, &mockLogger{}, sc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	// The first cycle fires immediately; cancel during the idle wait.
	time.Sleep(50 * time.Millisecond)
	cancel()
	svc.Wait()

	assert.Equal(t, 1, sc.scans)
}
