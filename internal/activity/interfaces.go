package activity

import (
	"context"

	"github.com/dhima/inventory-activity/internal/models"
)

// Store is the append-only Log Store.
type Store interface {
	// AppendActivity persists event and assigns its ID and CreatedAt.
	AppendActivity(ctx context.Context, event *models.ActivityEvent) error
	// ListActivity returns at most q.Limit events ordered by created_at DESC, id DESC.
	ListActivity(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error)
	// GetActivity returns nil, nil when no event has the given id.
	GetActivity(ctx context.Context, id int64) (*models.ActivityEvent, error)
	DistinctActions(ctx context.Context) ([]string, error)
	// CountByAction ignores q.Limit and q.After.
	CountByAction(ctx context.Context, q models.ActivityQuery) (map[string]int64, error)
}

// UserDirectory resolves actors. Unknown ids are absent from the returned map.
type UserDirectory interface {
	LookupUsers(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

// EventPublisher abstracts the Kafka publisher for testability.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }
