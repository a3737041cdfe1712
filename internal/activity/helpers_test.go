package activity

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dhima/inventory-activity/internal/logging"
	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/internal/storage"
	"github.com/dhima/inventory-activity/internal/testutil/fakes"
	"github.com/dhima/inventory-activity/pkg/clock"
)

var t0 = time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	mem   *storage.MemoryStore
	store *fakes.FlakyStore
	pub   *fakes.FakePublisher
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	mem := storage.NewMemoryStore(clock.NewStepping(t0, time.Minute))
	mem.PutUser(models.User{ID: 7, Username: "alice", FullName: "Alice Moreno", Role: "admin"})
	mem.PutUser(models.User{ID: 8, Username: "bob", FullName: "Bob Stone", Role: "clerk"})

	store := fakes.NewFlakyStore(mem)
	pub := &fakes.FakePublisher{}
	core, logs := observer.New(zapcore.DebugLevel)
	if opts.Clock == nil {
		opts.Clock = clock.NewFixed(t0)
	}

	svc := NewService(store, store, pub, logging.NewFromZap(zap.New(core)), opts)
	t.Cleanup(func() { _ = svc.Close() })

	return &fixture{
		svc:   svc,
		mem:   mem,
		store: store,
		pub:   pub,
		logs:  logs,
	}
}

// drain waits for the publish worker to hand every queued event to the publisher.
func (f *fixture) drain() {
	_ = f.svc.Close()
}

func int64Ptr(v int64) *int64 { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
