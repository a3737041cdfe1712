package activity

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/dhima/inventory-activity/internal/models"
)

// Filter is the caller-facing query over the activity log. Every field is optional
// and set fields combine with AND.
type Filter struct {
	ActorID *int64
	Action  string
	// StartDate and EndDate are calendar dates; only their year, month and day are used.
	// The range covers StartDate 00:00 through the end of EndDate in the service location.
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Limit     int
	Cursor    string
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return nil, NewValidationError("invalid date %q: expected YYYY-MM-DD", value)
	}
	return &d, nil
}

const dateLayout = "2006-01-02"

// scope validates the filter dimensions shared by listing and statistics.
func (f Filter) scope(loc *time.Location) (models.ActivityQuery, error) {
	var q models.ActivityQuery

	if f.ActorID != nil {
		if *f.ActorID < 1 {
			return q, NewValidationError("user id must be positive")
		}
		id := *f.ActorID
		q.ActorID = &id
	}

	q.Action = strings.TrimSpace(f.Action)
	if len(q.Action) > maxActionLength {
		return q, NewValidationError("action must be at most %d characters", maxActionLength)
	}

	if f.StartDate != nil {
		since := midnight(*f.StartDate, loc)
		q.Since = &since
	}
	if f.EndDate != nil {
		// Day+1 normalizes across month ends and DST changes.
		until := time.Date(f.EndDate.Year(), f.EndDate.Month(), f.EndDate.Day()+1, 0, 0, 0, 0, loc).UTC()
		q.Until = &until
	}
	if f.StartDate != nil && f.EndDate != nil && dateOf(*f.StartDate).After(dateOf(*f.EndDate)) {
		return q, NewValidationError("start date %s is after end date %s",
			f.StartDate.Format(dateLayout), f.EndDate.Format(dateLayout))
	}

	q.Search = strings.ToLower(strings.TrimSpace(f.Search))
	return q, nil
}

// normalize turns the filter into the store query for one page.
func (f Filter) normalize(loc *time.Location, defaultLimit, maxLimit int) (models.ActivityQuery, error) {
	q, err := f.scope(loc)
	if err != nil {
		return q, err
	}

	switch {
	case f.Limit < 0:
		return q, NewValidationError("limit must not be negative")
	case f.Limit == 0:
		q.Limit = defaultLimit
	case f.Limit > maxLimit:
		return q, NewValidationError("limit must be at most %d", maxLimit)
	default:
		q.Limit = f.Limit
	}

	if f.Cursor != "" {
		c, err := DecodeCursor(f.Cursor)
		if err != nil {
			return q, err
		}
		q.After = &c
	}
	return q, nil
}

// EncodeCursor returns the opaque token resuming a listing after c.
func EncodeCursor(c models.ActivityCursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + ":" + strconv.FormatInt(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (models.ActivityCursor, error) {
	invalid := NewValidationError("invalid cursor")

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return models.ActivityCursor{}, invalid
	}
	micros, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return models.ActivityCursor{}, invalid
	}
	us, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return models.ActivityCursor{}, invalid
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 1 {
		return models.ActivityCursor{}, invalid
	}
	return models.ActivityCursor{CreatedAt: time.UnixMicro(us).UTC(), ID: n}, nil
}

func midnight(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).UTC()
}

func dateOf(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
