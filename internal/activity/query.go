package activity

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dhima/inventory-activity/internal/models"
)

// Directory attributes shown for events whose actor cannot be resolved.
const (
	UnknownActorName     = "Unknown User"
	UnknownActorUsername = "unknown"
	UnknownActorRole     = "unknown"

	SystemActorName     = "System"
	SystemActorUsername = "system"
	SystemActorRole     = "system"
)

// QueryResult is one page of enriched events, newest first.
type QueryResult struct {
	Events []models.ActivityEntry
	// NextCursor resumes the listing after the last event; empty on the final page.
	NextCursor string
	// Actions is the taxonomy merged with every action present in Events.
	Actions []models.ActionOption
}

// Query returns the events matching f ordered by created_at DESC, id DESC.
// An invalid filter is rejected with a ValidationError before any scan.
func (s *Service) Query(ctx context.Context, f Filter) (QueryResult, error) {
	start := time.Now()

	q, err := f.normalize(s.loc, s.defaultLimit, s.maxLimit)
	if err != nil {
		queryDuration.WithLabelValues(outcomeInvalid).Observe(time.Since(start).Seconds())
		return QueryResult{}, err
	}

	result, err := s.runQuery(ctx, q)
	if err != nil {
		queryDuration.WithLabelValues(outcomeError).Observe(time.Since(start).Seconds())
		s.logger.Error("failed to query activity",
			zap.Any("filter", q),
			zap.Error(err))
		return QueryResult{}, err
	}

	queryDuration.WithLabelValues(outcomeOK).Observe(time.Since(start).Seconds())
	s.logger.Debug("queried activity",
		zap.Int("count", len(result.Events)),
		zap.Bool("has_more", result.NextCursor != ""))
	return result, nil
}

func (s *Service) runQuery(ctx context.Context, q models.ActivityQuery) (QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	page := q.Limit
	q.Limit = page + 1
	rows, err := s.store.ListActivity(ctx, q)
	if err != nil {
		return QueryResult{}, &StorageError{Op: "list activity", Err: err}
	}

	var result QueryResult
	if len(rows) > page {
		rows = rows[:page]
		last := rows[len(rows)-1]
		result.NextCursor = EncodeCursor(models.ActivityCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	result.Events, err = s.enrich(ctx, rows)
	if err != nil {
		return QueryResult{}, err
	}

	observed := make([]string, 0, len(rows))
	for _, row := range rows {
		observed = append(observed, row.Action)
	}
	result.Actions = s.taxonomy.Merge(observed...)
	return result, nil
}

// Get returns one enriched event, or nil when id does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*models.ActivityEntry, error) {
	if id < 1 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	event, err := s.store.GetActivity(ctx, id)
	if err != nil {
		s.logger.Error("failed to get activity", zap.Int64("id", id), zap.Error(err))
		return nil, &StorageError{Op: "get activity", Err: err}
	}
	if event == nil {
		return nil, nil
	}

	entries, err := s.enrich(ctx, []models.ActivityEvent{*event})
	if err != nil {
		s.logger.Error("failed to get activity", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &entries[0], nil
}

// KnownActions returns the taxonomy merged with every action ever recorded.
func (s *Service) KnownActions(ctx context.Context) ([]models.ActionOption, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	observed, err := s.store.DistinctActions(ctx)
	if err != nil {
		s.logger.Error("failed to list distinct actions", zap.Error(err))
		return nil, &StorageError{Op: "distinct actions", Err: err}
	}
	return s.taxonomy.Merge(observed...), nil
}

// Stats counts the events matching f grouped by action. Limit and Cursor are ignored.
func (s *Service) Stats(ctx context.Context, f Filter) (models.ActivityStats, error) {
	q, err := f.scope(s.loc)
	if err != nil {
		return models.ActivityStats{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	counts, err := s.store.CountByAction(ctx, q)
	if err != nil {
		s.logger.Error("failed to count activity", zap.Error(err))
		return models.ActivityStats{}, &StorageError{Op: "count activity", Err: err}
	}

	stats := models.ActivityStats{Since: q.Since, Until: q.Until, ByAction: make(map[string]int64, len(counts))}
	for action, n := range counts {
		stats.ByAction[action] = n
		stats.Total += n
	}
	return stats, nil
}

func (s *Service) enrich(ctx context.Context, rows []models.ActivityEvent) ([]models.ActivityEntry, error) {
	entries := make([]models.ActivityEntry, 0, len(rows))
	if len(rows) == 0 {
		return entries, nil
	}

	users, err := s.lookupActors(ctx, rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		entry := models.ActivityEntry{
			ActivityEvent: row,
			ActionLabel:   s.taxonomy.Label(row.Action),
		}
		switch {
		case row.ActorID == nil:
			entry.ActorFullName = SystemActorName
			entry.ActorUsername = SystemActorUsername
			entry.ActorRole = SystemActorRole
		default:
			if u, ok := users[*row.ActorID]; ok {
				entry.ActorFullName = u.FullName
				entry.ActorUsername = u.Username
				entry.ActorRole = u.Role
			} else {
				entry.ActorFullName = UnknownActorName
				entry.ActorUsername = UnknownActorUsername
				entry.ActorRole = UnknownActorRole
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) lookupActors(ctx context.Context, rows []models.ActivityEvent) (map[int64]models.User, error) {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.ActorID == nil {
			continue
		}
		if _, ok := seen[*row.ActorID]; ok {
			continue
		}
		seen[*row.ActorID] = struct{}{}
		ids = append(ids, *row.ActorID)
	}
	if len(ids) == 0 || s.users == nil {
		return map[int64]models.User{}, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users, err := s.users.LookupUsers(ctx, ids)
	if err != nil {
		return nil, &StorageError{Op: "lookup actors", Err: err}
	}
	return users, nil
}
