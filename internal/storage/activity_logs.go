package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dhima/inventory-activity/internal/models"
)

const activityColumns = `a.id, a.actor_id, a.action, a.description, a.ip_address, a.created_at`

// AppendActivity inserts event and fills in its ID and CreatedAt.
// created_at is taken by the server during the INSERT, in the same statement that
// draws the AUTO_INCREMENT id, and read back afterwards.
func (c *MySQLClient) AppendActivity(ctx context.Context, event *models.ActivityEvent) error {
	query := `
		INSERT INTO activity_logs (actor_id, action, description, ip_address, created_at)
		VALUES (?, ?, ?, ?, UTC_TIMESTAMP(6))
	`

	res, err := c.db.ExecContext(ctx, query,
		event.ActorID,
		event.Action,
		event.Description,
		event.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read activity id: %w", err)
	}

	var createdAt time.Time
	err = c.db.QueryRowContext(ctx, `SELECT created_at FROM activity_logs WHERE id = ?`, id).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to read activity %d created_at: %w", id, err)
	}

	event.ID = id
	event.CreatedAt = createdAt.UTC()
	return nil
}

// ListActivity returns events matching q, newest first, at most q.Limit rows.
func (c *MySQLClient) ListActivity(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error) {
	query, args := buildActivityListQuery(q)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	events := []models.ActivityEvent{}
	for rows.Next() {
		event, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return events, nil
}

// GetActivity retrieves a single event by ID.
func (c *MySQLClient) GetActivity(ctx context.Context, id int64) (*models.ActivityEvent, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_logs a WHERE a.id = ?`

	event, err := scanActivity(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &event, nil
}

// DistinctActions lists every action identifier present in the log.
func (c *MySQLClient) DistinctActions(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT action FROM activity_logs ORDER BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	actions := []string{}
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

// CountByAction counts events matching q per action; q.Limit and q.After are ignored.
func (c *MySQLClient) CountByAction(ctx context.Context, q models.ActivityQuery) (map[string]int64, error) {
	where, args := activityWhere(q, false)
	query := `SELECT a.action, COUNT(*) FROM activity_logs a` + activityJoin(q) + where + ` GROUP BY a.action`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

// buildActivityListQuery renders the keyset-paginated listing for q.
func buildActivityListQuery(q models.ActivityQuery) (string, []interface{}) {
	where, args := activityWhere(q, true)

	query := `SELECT ` + activityColumns + ` FROM activity_logs a` + activityJoin(q) + where +
		` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`
	args = append(args, q.Limit)
	return query, args
}

// activityJoin joins the users table only when the search term needs actor names.
func activityJoin(q models.ActivityQuery) string {
	if q.Search == "" {
		return ""
	}
	return ` LEFT JOIN users u ON u.id = a.actor_id`
}

func activityWhere(q models.ActivityQuery, withCursor bool) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if q.ActorID != nil {
		clauses = append(clauses, "a.actor_id = ?")
		args = append(args, *q.ActorID)
	}
	if q.Action != "" {
		clauses = append(clauses, "a.action = ?")
		args = append(args, q.Action)
	}
	if q.Since != nil {
		clauses = append(clauses, "a.created_at >= ?")
		args = append(args, *q.Since)
	}
	if q.Until != nil {
		clauses = append(clauses, "a.created_at < ?")
		args = append(args, *q.Until)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		clauses = append(clauses, `(LOWER(a.description) LIKE ? OR LOWER(u.username) LIKE ? OR LOWER(u.full_name) LIKE ? OR LOWER(a.ip_address) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if withCursor && q.After != nil {
		clauses = append(clauses, "(a.created_at < ? OR (a.created_at = ? AND a.id < ?))")
		args = append(args, q.After.CreatedAt, q.After.CreatedAt, q.After.ID)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (models.ActivityEvent, error) {
	var event models.ActivityEvent
	var actorID sql.NullInt64
	var ip sql.NullString

	if err := row.Scan(&event.ID, &actorID, &event.Action, &event.Description, &ip, &event.CreatedAt); err != nil {
		return models.ActivityEvent{}, err
	}

	if actorID.Valid {
		id := actorID.Int64
		event.ActorID = &id
	}
	if ip.Valid {
		addr := ip.String
		event.IPAddress = &addr
	}
	event.CreatedAt = event.CreatedAt.UTC()
	return event, nil
}
