package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/internal/storage"
	"github.com/dhima/inventory-activity/internal/testutil/fakes"
	"github.com/dhima/inventory-activity/pkg/clock"
	"github.com/dhima/inventory-activity/platform/events"
)

type failingSource struct{}

func (failingSource) CountByAction(context.Context, models.ActivityQuery) (map[string]int64, error) {
	return nil, errors.New("db down")
}

func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	// Three events at 2025-01-01 22:00, 23:00 and 2025-01-02 00:00 UTC.
	store := storage.NewMemoryStore(clock.NewStepping(time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC), time.Hour))
	for _, action := range []string{"SALE_CREATED", "SALE_CREATED", "STOCK_ADJUSTED"} {
		require.NoError(t, store.AppendActivity(context.Background(), &models.ActivityEvent{Action: action, Description: "d"}))
	}
	return store
}

func TestNewEngine_ValidatesConfig(t *testing.T) {
	store := storage.NewMemoryStore(nil)

	_, err := NewEngine(Config{Cron: "bogus", Window: time.Hour}, store, nil, nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{Cron: "0 0 * * *", Window: 0}, store, nil, nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{Cron: "0 0 * * *", Timezone: "Nowhere/City", Window: time.Hour}, store, nil, nil)
	assert.Error(t, err)

	_, err = NewEngine(Config{Cron: "0 0 * * *", Window: time.Hour}, nil, nil, nil)
	assert.Error(t, err)

	eng, err := NewEngine(Config{Cron: "0 0 * * *", Window: time.Hour}, store, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, eng.cfg.RunTimeout)
}

func TestRunOnce_PublishesTrailingWindowDigest(t *testing.T) {
	pub := &fakes.FakePublisher{}
	now := time.Date(2025, 1, 2, 0, 30, 0, 0, time.UTC)
	eng, err := NewEngineWithClock(Config{Cron: "0 0 * * *", Window: 2 * time.Hour}, seededStore(t), pub, logging.NewNoOpLogger(), clock.NewFixed(now))
	require.NoError(t, err)

	digest, err := eng.RunOnce(context.Background())

	require.NoError(t, err)
	// 22:00 falls outside [22:30, 00:30).
	assert.Equal(t, int64(2), digest.Total)
	assert.Equal(t, map[string]int64{"SALE_CREATED": 1, "STOCK_ADJUSTED": 1}, digest.ByAction)
	assert.Equal(t, now.Add(-2*time.Hour), digest.WindowStart)

	published := pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "2025-01-02T00:30:00Z", published[0].Key)
	msg, ok := published[0].Value.(events.ActivityDigest)
	require.True(t, ok)
	assert.Equal(t, events.TypeActivityDigest, msg.Type)
}

func TestRunOnce_WithoutPublisherOnlyLogs(t *testing.T) {
	eng, err := NewEngineWithClock(Config{Cron: "0 0 * * *", Window: 24 * time.Hour}, seededStore(t), nil, nil,
		clock.NewFixed(time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	digest, err := eng.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), digest.Total)
}

func TestRunOnce_SourceFailure(t *testing.T) {
	pub := &fakes.FakePublisher{}
	eng, err := NewEngine(Config{Cron: "0 0 * * *", Window: time.Hour}, failingSource{}, pub, nil)
	require.NoError(t, err)

	_, err = eng.RunOnce(context.Background())

	assert.Error(t, err)
	assert.Empty(t, pub.Published())
}

func TestRunOnce_PublishFailure(t *testing.T) {
	pub := &fakes.FakePublisher{FailNext: true}
	eng, err := NewEngine(Config{Cron: "0 0 * * *", Window: time.Hour}, seededStore(t), pub, nil)
	require.NoError(t, err)

	_, err = eng.RunOnce(context.Background())

	assert.ErrorContains(t, err, "publish digest")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	eng, err := NewEngine(Config{Cron: "0 0 1 1 *", Window: time.Hour}, seededStore(t), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestRun_FiresOnSchedule(t *testing.T) {
	pub := &fakes.FakePublisher{}
	eng, err := NewEngine(Config{Cron: "* * * * * *", Window: time.Hour}, seededStore(t), pub, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = eng.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(pub.Published()) > 0 }, 3*time.Second, 50*time.Millisecond)
}
