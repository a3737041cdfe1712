package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dhima/inventory-activity/internal/models"
	"github.com/dhima/inventory-activity/pkg/clock"
)

// MemoryStore is an in-process activity log and users directory with the same
// ordering and filter semantics as the MySQL store. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	clock  clock.Clock
	nextID int64
	events []models.ActivityEvent
	users  map[int64]models.User
}

// NewMemoryStore creates an empty store; nil clk uses the wall clock.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryStore{
		clock: clk,
		users: make(map[int64]models.User),
	}
}

// PutUser adds or replaces a directory entry.
func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// DeleteUser removes a directory entry; events referencing it are kept.
func (s *MemoryStore) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *MemoryStore) AppendActivity(ctx context.Context, event *models.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	event.ID = s.nextID
	event.CreatedAt = s.clock.Now()
	s.events = append(s.events, cloneEvent(*event))
	return nil
}

func (s *MemoryStore) ListActivity(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.ActivityEvent{}
	for _, e := range s.events {
		if s.matches(e, q) && after(e, q.After) {
			result = append(result, cloneEvent(e))
		}
	}
	sortNewestFirst(result)
	if q.Limit >= 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func (s *MemoryStore) GetActivity(ctx context.Context, id int64) (*models.ActivityEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			found := cloneEvent(e)
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) DistinctActions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	actions := []string{}
	for _, e := range s.events {
		if _, ok := seen[e.Action]; !ok {
			seen[e.Action] = struct{}{}
			actions = append(actions, e.Action)
		}
	}
	sort.Strings(actions)
	return actions, nil
}

func (s *MemoryStore) CountByAction(ctx context.Context, q models.ActivityQuery) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int64{}
	for _, e := range s.events {
		if s.matches(e, q) {
			counts[e.Action]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) LookupUsers(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			found[id] = u
		}
	}
	return found, nil
}

// matches applies every filter dimension except the cursor. Callers hold s.mu.
func (s *MemoryStore) matches(e models.ActivityEvent, q models.ActivityQuery) bool {
	if q.ActorID != nil && (e.ActorID == nil || *e.ActorID != *q.ActorID) {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.Since != nil && e.CreatedAt.Before(*q.Since) {
		return false
	}
	if q.Until != nil && !e.CreatedAt.Before(*q.Until) {
		return false
	}
	if q.Search != "" {
		fields := []string{e.Description}
		if e.IPAddress != nil {
			fields = append(fields, *e.IPAddress)
		}
		if e.ActorID != nil {
			if u, ok := s.users[*e.ActorID]; ok {
				fields = append(fields, u.Username, u.FullName)
			}
		}
		hit := false
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q.Search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func after(e models.ActivityEvent, c *models.ActivityCursor) bool {
	if c == nil {
		return true
	}
	if e.CreatedAt.Equal(c.CreatedAt) {
		return e.ID < c.ID
	}
	return e.CreatedAt.Before(c.CreatedAt)
}

func sortNewestFirst(events []models.ActivityEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].ID > events[j].ID
	})
}

func cloneEvent(e models.ActivityEvent) models.ActivityEvent {
	if e.ActorID != nil {
		id := *e.ActorID
		e.ActorID = &id
	}
	if e.IPAddress != nil {
		ip := *e.IPAddress
		e.IPAddress = &ip
	}
	return e
}
