package events

import "time"

// Message types carried in the "type" field.
const (
	TypeActivityRecorded = "activity.recorded"
	TypeActivityDigest   = "activity.digest"
)

// ActivityRecorded is published after an activity event has been durably stored.
type ActivityRecorded struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	ActorID     *int64    `json:"actor_id,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityDigest summarizes activity over a window.
type ActivityDigest struct {
	Type        string           `json:"type"`
	WindowStart time.Time        `json:"window_start"`
	WindowEnd   time.Time        `json:"window_end"`
	Total       int64            `json:"total"`
	ByAction    map[string]int64 `json:"by_action"`
	GeneratedAt time.Time        `json:"generated_at"`
}
