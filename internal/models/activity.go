package models

import "time"

// ActivityEvent is one immutable row of the append-only activity log.
type ActivityEvent struct {
	ID          int64     `json:"id"`
	ActorID     *int64    `json:"actor_id,omitempty"` // NULL for system-initiated events
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityEntry is an ActivityEvent enriched with the actor's current directory attributes.
type ActivityEntry struct {
	ActivityEvent
	ActionLabel   string `json:"action_label" example:"supplier created"`
	ActorUsername string `json:"actor_username" example:"alice"`
	ActorFullName string `json:"actor_full_name" example:"Alice Moreno"`
	ActorRole     string `json:"actor_role" example:"admin"`
} // @name ActivityEntry

// ActivityCursor marks the last row of a page in (created_at DESC, id DESC) order.
type ActivityCursor struct {
	CreatedAt time.Time
	ID        int64
}

// ActivityQuery is a validated, normalized filter handed to the Log Store.
// All fields are optional and combine with AND; Until is exclusive.
type ActivityQuery struct {
	ActorID *int64
	Action  string
	Since   *time.Time
	Until   *time.Time
	Search  string // lower-cased; matched against description, username, full name, IP
	Limit   int
	After   *ActivityCursor
}

// ListActivityQuery represents query parameters for listing activity.
type ListActivityQuery struct {
	UserID    *int64 `form:"user_id" binding:"omitempty,min=1" example:"7"`
	Action    string `form:"action" binding:"omitempty,action_id" example:"SUPPLIER_CREATED"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02" example:"2025-11-01"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02" example:"2025-11-30"`
	Search    string `form:"search" binding:"omitempty,max=100" example:"abc"`
	Limit     int    `form:"limit" binding:"omitempty,min=1" example:"500"`
	Cursor    string `form:"cursor" example:"MTczMDQ0ODAwMDAwMDAwMDA6NDI"`
} // @name ListActivityQuery

// ActionOption is one entry of the action filter vocabulary.
type ActionOption struct {
	ID    string `json:"id" example:"STOCK_ADJUSTED"`
	Label string `json:"label" example:"stock adjusted"`
} // @name ActionOption

// ActivityListResponse represents the response for listing activity.
type ActivityListResponse struct {
	Events     []ActivityEntry `json:"events"`
	Count      int             `json:"count" example:"25"`
	NextCursor string          `json:"next_cursor,omitempty"`
	Actions    []ActionOption  `json:"actions"`
} // @name ActivityListResponse

// KnownActionsResponse represents the action vocabulary for filter UIs.
type KnownActionsResponse struct {
	Actions []ActionOption `json:"actions"`
} // @name KnownActionsResponse

// ActivityStats aggregates counts grouped by action.
type ActivityStats struct {
	Since    *time.Time       `json:"since,omitempty"`
	Until    *time.Time       `json:"until,omitempty"`
	Total    int64            `json:"total" example:"120"`
	ByAction map[string]int64 `json:"by_action"`
} // @name ActivityStats

// RecordActivityRequest is the ingestion payload for other services.
type RecordActivityRequest struct {
	ActorID     *int64  `json:"actor_id,omitempty" example:"7"`
	Action      string  `json:"action" example:"SUPPLIER_CREATED"`
	Description string  `json:"description" example:"Created supplier ABC Ltd"`
	IPAddress   *string `json:"ip_address,omitempty" example:"10.0.0.5"`
} // @name RecordActivityRequest

// RecordActivityResponse reports the outcome of an ingestion request.
type RecordActivityResponse struct {
	ID        int64      `json:"id,omitempty" example:"42"`
	Recorded  bool       `json:"recorded" example:"true"`
	CreatedAt *time.Time `json:"created_at,omitempty" example:"2025-11-05T10:30:00Z"`
} // @name RecordActivityResponse
