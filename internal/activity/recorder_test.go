package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/inventory-activity/platform/events"
)

func TestRecord_Success_PersistsAndPublishes(t *testing.T) {
	f := newFixture(t, Options{})
	before := testutil.ToFloat64(recordTotal.WithLabelValues(outcomeRecorded))

	res, err := f.svc.Record(context.Background(), RecordInput{
		ActorID:     int64Ptr(7),
		Action:      "SUPPLIER_CREATED",
		Description: "Created supplier ABC Ltd",
		IPAddress:   "10.0.0.5",
	})

	require.NoError(t, err)
	require.True(t, res.Recorded)
	require.NotNil(t, res.Event)
	assert.Equal(t, int64(1), res.Event.ID)
	assert.Equal(t, t0, res.Event.CreatedAt)
	assert.Equal(t, "10.0.0.5", *res.Event.IPAddress)
	assert.Equal(t, 1, f.mem.Len())
	assert.Equal(t, before+1, testutil.ToFloat64(recordTotal.WithLabelValues(outcomeRecorded)))
	recorded := f.logs.FilterMessage("activity recorded").All()
	require.Len(t, recorded, 1)
	assert.Equal(t, true, recorded[0].ContextMap()["registered_action"])

	f.drain()
	published := f.pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "1", published[0].Key)
	msg, ok := published[0].Value.(events.ActivityRecorded)
	require.True(t, ok)
	assert.Equal(t, events.TypeActivityRecorded, msg.Type)
	assert.Equal(t, "SUPPLIER_CREATED", msg.Action)
}

func TestRecord_TrimsAndNormalizes(t *testing.T) {
	f := newFixture(t, Options{})

	res, err := f.svc.Record(context.Background(), RecordInput{
		Action:      "  PRODUCT_UPDATED ",
		Description: "  Updated widget\n",
		IPAddress:   "2001:0db8:0000:0000:0000:0000:0000:0001",
	})

	require.NoError(t, err)
	assert.Equal(t, "PRODUCT_UPDATED", res.Event.Action)
	assert.Equal(t, "Updated widget", res.Event.Description)
	assert.Equal(t, "2001:db8::1", *res.Event.IPAddress)
	assert.Nil(t, res.Event.ActorID)
}

func TestRecord_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   RecordInput
	}{
		{"empty action", RecordInput{Action: "  ", Description: "d"}},
		{"empty description", RecordInput{Action: "A", Description: "\t"}},
		{"action too long", RecordInput{Action: strings.Repeat("A", 65), Description: "d"}},
		{"description too long", RecordInput{Action: "A", Description: strings.Repeat("é", 1001)}},
		{"bad ip", RecordInput{Action: "A", Description: "d", IPAddress: "300.1.1.1"}},
		{"non-positive actor", RecordInput{ActorID: int64Ptr(0), Action: "A", Description: "d"}},
		{"unknown actor", RecordInput{ActorID: int64Ptr(404), Action: "A", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})

			res, err := f.svc.Record(context.Background(), tt.in)

			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.False(t, res.Recorded)
			assert.Equal(t, 0, f.mem.Len())
			assert.Empty(t, f.pub.Published())
		})
	}
}

func TestRecord_DescriptionAtLimitIsAccepted(t *testing.T) {
	f := newFixture(t, Options{})

	res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: strings.Repeat("é", 1000)})

	require.NoError(t, err)
	assert.True(t, res.Recorded)
}

func TestRecord_StoreFailureIsSuppressedAndReported(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AppendErr = errors.New("disk full")
	before := testutil.ToFloat64(recordTotal.WithLabelValues(outcomeFailed))

	res, err := f.svc.Record(context.Background(), RecordInput{ActorID: int64Ptr(7), Action: "SALE_CREATED", Description: "Sale #12"})

	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Nil(t, res.Event)
	assert.Empty(t, f.pub.Published())
	assert.Equal(t, before+1, testutil.ToFloat64(recordTotal.WithLabelValues(outcomeFailed)))

	select {
	case failure := <-f.svc.Failures():
		assert.Equal(t, StageAppend, failure.Stage)
		assert.Equal(t, "SALE_CREATED", failure.Input.Action)
		assert.True(t, IsStorage(failure.Err))
		assert.Equal(t, t0, failure.At)
	default:
		t.Fatal("expected a failure on the channel")
	}

	entries := f.logs.FilterMessage("activity record failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, StageAppend, entries[0].ContextMap()["stage"])
}

func TestRecord_StorePanicIsContained(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AppendPanic = "driver bug"

	var res RecordResult
	var err error
	require.NotPanics(t, func() {
		res, err = f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})
	})

	assert.NoError(t, err)
	assert.False(t, res.Recorded)
	failure := <-f.svc.Failures()
	assert.Contains(t, failure.Err.Error(), "driver bug")
}

func TestRecord_DirectoryFailureIsSuppressed(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.LookupErr = errors.New("users table locked")

	res, err := f.svc.Record(context.Background(), RecordInput{ActorID: int64Ptr(7), Action: "A", Description: "d"})

	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.Equal(t, 0, f.store.AppendCalls())
	assert.Equal(t, StageVerify, (<-f.svc.Failures()).Stage)
}

func TestRecord_PublishFailureKeepsRecorded(t *testing.T) {
	f := newFixture(t, Options{})
	f.pub.FailNext = true
	before := testutil.ToFloat64(publishFailures)

	res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})

	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, 1, f.mem.Len())
	f.drain()
	assert.Equal(t, before+1, testutil.ToFloat64(publishFailures))
	assert.Equal(t, StagePublish, (<-f.svc.Failures()).Stage)
}

func TestRecord_HangingPublisherDoesNotDelayCaller(t *testing.T) {
	f := newFixture(t, Options{RecordTimeout: time.Second})
	f.pub.Hang = true

	start := time.Now()
	res, err := f.svc.Record(context.Background(), RecordInput{ActorID: int64Ptr(7), Action: "SALE_CREATED", Description: "Sale #5"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Less(t, elapsed, 250*time.Millisecond)
	assert.Equal(t, 1, f.mem.Len())

	f.drain()
	failure := <-f.svc.Failures()
	assert.Equal(t, StagePublish, failure.Stage)
	assert.ErrorIs(t, failure.Err, context.DeadlineExceeded)
}

func TestRecord_FullPublishQueueDropsAndCounts(t *testing.T) {
	f := newFixture(t, Options{RecordTimeout: 100 * time.Millisecond, PublishBuffer: 1, FailureBuffer: 8})
	f.pub.Hang = true
	before := testutil.ToFloat64(publishDrops)

	// One event can be in flight and one queued; the rest must be dropped.
	for i := 0; i < 4; i++ {
		res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})
		require.NoError(t, err)
		assert.True(t, res.Recorded)
	}

	assert.Equal(t, 4, f.mem.Len())
	assert.GreaterOrEqual(t, testutil.ToFloat64(publishDrops)-before, float64(2))

	dropped := <-f.svc.Failures()
	assert.Equal(t, StagePublish, dropped.Stage)
	assert.ErrorIs(t, dropped.Err, ErrPublishQueueFull)
}

func TestRecord_AfterCloseStillStoresWithoutPublishing(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.svc.Close())

	res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})

	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Empty(t, f.pub.Published())
	assert.ErrorIs(t, (<-f.svc.Failures()).Err, ErrPublishQueueFull)
	assert.NoError(t, f.svc.Close())
}

func TestRecord_SurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.Record(ctx, RecordInput{ActorID: int64Ptr(8), Action: "USER_LOGOUT", Description: "Signed out"})

	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, 1, f.mem.Len())
}

func TestRecord_WriteIsBoundedByRecordTimeout(t *testing.T) {
	f := newFixture(t, Options{RecordTimeout: 20 * time.Millisecond})
	f.store.BlockAppend = true

	res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})

	require.NoError(t, err)
	assert.False(t, res.Recorded)
	failure := <-f.svc.Failures()
	assert.ErrorIs(t, failure.Err, context.DeadlineExceeded)
}

func TestRecord_FullFailureChannelDoesNotBlock(t *testing.T) {
	f := newFixture(t, Options{FailureBuffer: 1})
	f.store.AppendErr = errors.New("down")
	before := testutil.ToFloat64(failureDrops)

	for i := 0; i < 3; i++ {
		res, err := f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})
		require.NoError(t, err)
		assert.False(t, res.Recorded)
	}

	assert.Len(t, f.svc.Failures(), 1)
	assert.Equal(t, before+2, testutil.ToFloat64(failureDrops))
}

func TestRecord_IDsStrictlyIncrease(t *testing.T) {
	f := newFixture(t, Options{})

	var last int64
	for i := 0; i < 5; i++ {
		res, err := f.svc.Record(context.Background(), RecordInput{Action: "STOCK_ADJUSTED", Description: "Adjusted"})
		require.NoError(t, err)
		assert.Greater(t, res.Event.ID, last)
		last = res.Event.ID
	}
}

func TestRecordFailure_ErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	failure := RecordFailure{Stage: StageAppend, Input: RecordInput{Action: "A"}, Err: cause}

	assert.ErrorIs(t, failure, cause)
	assert.Contains(t, failure.Error(), "append")
}
