package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{ warnMsgs []string }

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type mockRepo struct {
	state   map[string]map[string]time.Time
	loadErr error
	saveErr error
	saveCnt int
}

func newMockRepo() *mockRepo {
	return &mockRepo{state: make(map[string]map[string]time.Time)}
}

func (m *mockRepo) Load(ctx context.Context, namespace string) (map[string]time.Time, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]time.Time, len(m.state[namespace]))
	for k, v := range m.state[namespace] {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepo) Save(ctx context.Context, namespace string, entries map[string]time.Time) error {
	m.saveCnt++
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := make(map[string]time.Time, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	m.state[namespace] = cp
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("hydrates from the repository", func(t *testing.T) {
		repo := newMockRepo()
		repo.state["ema"] = map[string]time.Time{"BTCUSDT": now.Add(-time.Hour)}

		store, err := NewStore(ctx, "ema", repo, &mockLogger{}, fixedNow(now))
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
		last, ok := store.LastAlert("BTCUSDT")
		require.True(t, ok)
		assert.Equal(t, now.Add(-time.Hour), last)
	})

	t.Run("load failure starts empty with a warning", func(t *testing.T) {
		repo := newMockRepo()
		repo.loadErr = errors.New("disk gone")
		logger := &mockLogger{}

		store, err := NewStore(ctx, "ema", repo, logger, fixedNow(now))
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
		assert.NotEmpty(t, logger.warnMsgs)
	})

	t.Run("missing namespace", func(t *testing.T) {
		_, err := NewStore(ctx, "", newMockRepo(), &mockLogger{}, nil)
		require.Error(t, err)
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewStore(ctx, "ema", nil, &mockLogger{}, nil)
		require.Error(t, err)
	})
}

func TestStoreRecordAndSuppress(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := RollingWindow{Window: 2 * time.Hour}

	t.Run("record writes through and suppresses", func(t *testing.T) {
		repo := newMockRepo()
		store, err := NewStore(ctx, "flip", repo, &mockLogger{}, fixedNow(now))
		require.NoError(t, err)

		assert.False(t, store.IsSuppressed("BTCUSDT", policy))
		store.Record(ctx, "BTCUSDT")
		assert.True(t, store.IsSuppressed("BTCUSDT", policy))
		assert.Equal(t, now, repo.state["flip"]["BTCUSDT"])
	})

	t.Run("re-record overwrites instead of duplicating", func(t *testing.T) {
		repo := newMockRepo()
		store, err := NewStore(ctx, "flip", repo, &mockLogger{}, fixedNow(now))
		require.NoError(t, err)

		store.Record(ctx, "BTCUSDT")
		store.Record(ctx, "BTCUSDT")
		assert.Equal(t, 1, store.Len())
		assert.Len(t, repo.state["flip"], 1)
		assert.Equal(t, 2, repo.saveCnt, "every record writes through")
	})

	t.Run("failed save keeps in-memory state authoritative", func(t *testing.T) {
		repo := newMockRepo()
		repo.saveErr = errors.New("disk full")
		logger := &mockLogger{}
		store, err := NewStore(ctx, "flip", repo, logger, fixedNow(now))
		require.NoError(t, err)

		store.Record(ctx, "ETHUSDT")
		assert.True(t, store.IsSuppressed("ETHUSDT", policy))
		assert.NotEmpty(t, logger.warnMsgs)
	})

	t.Run("entry older than the window no longer suppresses", func(t *testing.T) {
		repo := newMockRepo()
		repo.state["flip"] = map[string]time.Time{"BTCUSDT": now.Add(-2 * time.Hour)}
		store, err := NewStore(ctx, "flip", repo, &mockLogger{}, fixedNow(now))
		require.NoError(t, err)

		assert.False(t, store.IsSuppressed("BTCUSDT", policy))
	})
}
