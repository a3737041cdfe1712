package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/inventory-activity/internal/models"
)

func record(t *testing.T, f *fixture, actor *int64, action, description, ip string) models.ActivityEvent {
	t.Helper()
	res, err := f.svc.Record(context.Background(), RecordInput{ActorID: actor, Action: action, Description: description, IPAddress: ip})
	require.NoError(t, err)
	require.True(t, res.Recorded)
	return *res.Event
}

func eventIDs(entries []models.ActivityEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestQuery_NoFiltersReturnsNewestFirstEnriched(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, int64Ptr(7), "SUPPLIER_CREATED", "Created supplier ABC Ltd", "")
	record(t, f, int64Ptr(8), "PRODUCT_UPDATED", "Updated widget", "10.0.0.9")
	record(t, f, nil, "SETTINGS_UPDATED", "Nightly sync", "")

	res, err := f.svc.Query(context.Background(), Filter{})

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, eventIDs(res.Events))
	assert.Empty(t, res.NextCursor)

	assert.Equal(t, SystemActorName, res.Events[0].ActorFullName)
	assert.Equal(t, "Bob Stone", res.Events[1].ActorFullName)
	assert.Equal(t, "clerk", res.Events[1].ActorRole)
	assert.Equal(t, "alice", res.Events[2].ActorUsername)
	assert.Equal(t, "supplier created", res.Events[2].ActionLabel)
}

func TestQuery_Filters(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, int64Ptr(7), "SUPPLIER_CREATED", "Created supplier ABC Ltd", "")
	record(t, f, int64Ptr(7), "SUPPLIER_CREATED", "Created supplier XYZ", "")
	record(t, f, int64Ptr(8), "SUPPLIER_CREATED", "Created supplier abc trading", "")
	record(t, f, int64Ptr(8), "PRODUCT_UPDATED", "Updated widget", "192.168.1.20")

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"actor", Filter{ActorID: int64Ptr(7)}, []int64{2, 1}},
		{"action", Filter{Action: "PRODUCT_UPDATED"}, []int64{4}},
		{"search is case-insensitive", Filter{Search: "ABC"}, []int64{3, 1}},
		{"search matches username", Filter{Search: "bob"}, []int64{4, 3}},
		{"search matches ip", Filter{Search: "192.168"}, []int64{4}},
		{"actor AND action AND search", Filter{ActorID: int64Ptr(7), Action: "SUPPLIER_CREATED", Search: "abc"}, []int64{1}},
		{"search wildcard is literal", Filter{Search: "%"}, []int64{}},
		{"no match", Filter{Action: "SALE_DELETED"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Query(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eventIDs(res.Events))
		})
	}
}

func TestQuery_DateRangeIncludesWholeEndDay(t *testing.T) {
	f := newFixture(t, Options{})
	// Stepping clock starts at 2025-11-05 09:00 UTC, one minute per event.
	record(t, f, nil, "A_ONE", "first", "")
	record(t, f, nil, "A_TWO", "second", "")

	inside, err := f.svc.Query(context.Background(), Filter{StartDate: date(2025, 11, 5), EndDate: date(2025, 11, 5)})
	require.NoError(t, err)
	assert.Len(t, inside.Events, 2)

	before, err := f.svc.Query(context.Background(), Filter{EndDate: date(2025, 11, 4)})
	require.NoError(t, err)
	assert.Empty(t, before.Events)

	after, err := f.svc.Query(context.Background(), Filter{StartDate: date(2025, 11, 6)})
	require.NoError(t, err)
	assert.Empty(t, after.Events)
}

func TestQuery_InvalidRangeFailsBeforeScan(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Query(context.Background(), Filter{StartDate: date(2025, 11, 30), EndDate: date(2025, 11, 1)})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, f.store.ListCalls())
}

func TestQuery_PaginatesWithCursor(t *testing.T) {
	f := newFixture(t, Options{})
	for i := 0; i < 5; i++ {
		record(t, f, int64Ptr(7), "STOCK_ADJUSTED", "Adjusted", "")
	}

	first, err := f.svc.Query(context.Background(), Filter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4}, eventIDs(first.Events))
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, 3, f.store.LastQuery().Limit)

	second, err := f.svc.Query(context.Background(), Filter{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, eventIDs(second.Events))

	third, err := f.svc.Query(context.Background(), Filter{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, eventIDs(third.Events))
	assert.Empty(t, third.NextCursor)
}

func TestQuery_AppliesDefaultLimit(t *testing.T) {
	f := newFixture(t, Options{DefaultLimit: 3})
	for i := 0; i < 4; i++ {
		record(t, f, nil, "A", "d", "")
	}

	res, err := f.svc.Query(context.Background(), Filter{})

	require.NoError(t, err)
	assert.Len(t, res.Events, 3)
	assert.NotEmpty(t, res.NextCursor)
}

func TestQuery_DeletedActorGetsSentinel(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, int64Ptr(8), "USER_LOGIN", "Signed in", "")
	f.mem.DeleteUser(8)

	res, err := f.svc.Query(context.Background(), Filter{})

	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, UnknownActorName, res.Events[0].ActorFullName)
	assert.Equal(t, UnknownActorUsername, res.Events[0].ActorUsername)
	assert.Equal(t, int64(8), *res.Events[0].ActorID)
	assert.Equal(t, "user signed in", res.Events[0].ActionLabel)
}

func TestQuery_ActionsMergeTaxonomyWithObserved(t *testing.T) {
	tax := NewTaxonomy([]string{"SUPPLIER_CREATED", "PRODUCT_CREATED"}, nil)
	f := newFixture(t, Options{Taxonomy: &tax})
	record(t, f, nil, "BARCODE_PRINTED", "Printed labels", "")
	record(t, f, nil, "SUPPLIER_CREATED", "Created supplier", "")

	res, err := f.svc.Query(context.Background(), Filter{})

	require.NoError(t, err)
	assert.Equal(t, []models.ActionOption{
		{ID: "BARCODE_PRINTED", Label: "barcode printed"},
		{ID: "PRODUCT_CREATED", Label: "product created"},
		{ID: "SUPPLIER_CREATED", Label: "supplier created"},
	}, res.Actions)
	assert.Equal(t, []string{"PRODUCT_CREATED", "SUPPLIER_CREATED"}, f.svc.Taxonomy().Actions())
}

func TestQuery_EmptyResultStillListsTaxonomy(t *testing.T) {
	f := newFixture(t, Options{})

	res, err := f.svc.Query(context.Background(), Filter{})

	require.NoError(t, err)
	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
	assert.Len(t, res.Actions, len(DefaultActions()))
}

func TestQuery_StoreFailureIsStorageError(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.ListErr = errors.New("connection refused")

	_, err := f.svc.Query(context.Background(), Filter{})

	require.Error(t, err)
	assert.True(t, IsStorage(err))
	assert.False(t, IsValidation(err))
}

func TestQuery_DirectoryFailureIsStorageError(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, int64Ptr(7), "A", "d", "")
	f.store.LookupErr = errors.New("users table locked")

	_, err := f.svc.Query(context.Background(), Filter{})

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "lookup actors", se.Op)
}

func TestQuery_ConcurrentWithRecord(t *testing.T) {
	f := newFixture(t, Options{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = f.svc.Record(context.Background(), RecordInput{Action: "A", Description: "d"})
		}
	}()

	for i := 0; i < 20; i++ {
		res, err := f.svc.Query(context.Background(), Filter{Limit: 10})
		require.NoError(t, err)
		for j := 1; j < len(res.Events); j++ {
			assert.Greater(t, res.Events[j-1].ID, res.Events[j].ID)
		}
	}
	<-done
	assert.Equal(t, 50, f.mem.Len())
}

func TestGet(t *testing.T) {
	f := newFixture(t, Options{})
	ev := record(t, f, int64Ptr(7), "SUPPLIER_CREATED", "Created supplier ABC Ltd", "")

	entry, err := f.svc.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Alice Moreno", entry.ActorFullName)

	missing, err := f.svc.Get(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKnownActions_IncludesEverRecorded(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, nil, "LEGACY_IMPORT", "Imported", "")

	actions, err := f.svc.KnownActions(context.Background())

	require.NoError(t, err)
	assert.Len(t, actions, len(DefaultActions())+1)
	assert.Contains(t, actions, models.ActionOption{ID: "LEGACY_IMPORT", Label: "legacy import"})
}

func TestStats_CountsByActionIgnoringLimit(t *testing.T) {
	f := newFixture(t, Options{})
	record(t, f, int64Ptr(7), "SALE_CREATED", "Sale 1", "")
	record(t, f, int64Ptr(7), "SALE_CREATED", "Sale 2", "")
	record(t, f, int64Ptr(8), "PURCHASE_RECEIVED", "PO 9", "")

	stats, err := f.svc.Stats(context.Background(), Filter{Limit: 1, StartDate: date(2025, 11, 5)})

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{"SALE_CREATED": 2, "PURCHASE_RECEIVED": 1}, stats.ByAction)
	assert.Equal(t, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), *stats.Since)
	assert.Nil(t, stats.Until)
}

func TestStats_RejectsInvalidRange(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Stats(context.Background(), Filter{StartDate: date(2025, 11, 2), EndDate: date(2025, 11, 1)})

	assert.True(t, IsValidation(err))
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, Options{DefaultLimit: 5000})
	t.Cleanup(func() { _ = svc.Close() })

	assert.Equal(t, DefaultMaxQueryLimit, svc.maxLimit)
	assert.Equal(t, DefaultMaxQueryLimit, svc.defaultLimit)
	assert.Equal(t, DefaultQueryTimeout, svc.queryTimeout)
	assert.Equal(t, DefaultRecordTimeout, svc.recordTimeout)
	assert.Equal(t, DefaultFailureBuffer, cap(svc.failures))
	assert.Equal(t, DefaultPublishBuffer, cap(svc.publishQueue))
	assert.Equal(t, time.UTC, svc.loc)
}
