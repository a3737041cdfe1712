package fakes

import (
	"context"
	"errors"
	"sync"

	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/internal/storage"
)

// ErrStoreDown is returned by FlakyStore when a failure is armed without a custom error.
var ErrStoreDown = errors.New("store unavailable")

// FlakyStore wraps an in-memory store and injects failures per operation.
type FlakyStore struct {
	*storage.MemoryStore

	mu          sync.Mutex
	AppendErr   error
	AppendPanic interface{}
	ListErr     error
	LookupErr   error
	// BlockAppend holds AppendActivity until the context is done.
	BlockAppend bool

	appendCalls int
	listCalls   int
	lastQuery   models.ActivityQuery
}

// NewFlakyStore wraps store.
func NewFlakyStore(store *storage.MemoryStore) *FlakyStore {
	return &FlakyStore{MemoryStore: store}
}

func (s *FlakyStore) AppendActivity(ctx context.Context, event *models.ActivityEvent) error {
	s.mu.Lock()
	s.appendCalls++
	appendErr, appendPanic, block := s.AppendErr, s.AppendPanic, s.BlockAppend
	s.mu.Unlock()

	if appendPanic != nil {
		panic(appendPanic)
	}
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if appendErr != nil {
		return appendErr
	}
	return s.MemoryStore.AppendActivity(ctx, event)
}

func (s *FlakyStore) ListActivity(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	s.mu.Lock()
	s.listCalls++
	s.lastQuery = q
	listErr := s.ListErr
	s.mu.Unlock()

	if listErr != nil {
		return nil, listErr
	}
	return s.MemoryStore.ListActivity(ctx, q)
}

func (s *FlakyStore) LookupUsers(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	s.mu.Lock()
	lookupErr := s.LookupErr
	s.mu.Unlock()

	if lookupErr != nil {
		return nil, lookupErr
	}
	return s.MemoryStore.LookupUsers(ctx, ids)
}

// AppendCalls returns how many times AppendActivity was invoked.
func (s *FlakyStore) AppendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendCalls
}

// ListCalls returns how many times ListActivity was invoked.
func (s *FlakyStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// LastQuery returns the query passed to the latest ListActivity call.
func (s *FlakyStore) LastQuery() models.ActivityQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}
