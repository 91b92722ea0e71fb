package internal

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageStore reads the message backlog and flips the per-row processed
// flag. The table name is configured, not hard-coded; it is validated as a
// bare identifier by Config.Validate before it reaches a query.
type MessageStore struct {
	db    *sql.DB
	table string
}

// NewMessageStore creates a store over an open database.
func NewMessageStore(db *sql.DB, table string) *MessageStore {
	return &MessageStore{db: db, table: table}
}

// FetchUnprocessed returns the backlog for one owner: rows with a matching
// owner and processed=0, oldest first. Only the fields the training loop
// needs are selected. No matches yields an empty slice, not an error.
func (s *MessageStore) FetchUnprocessed(ctx context.Context, ownerID string) ([]MessageRow, error) {
	query := fmt.Sprintf(
		"SELECT id, message_content, slack_message_ts FROM %s WHERE slack_user_id = ? AND processed = 0 ORDER BY created_at ASC",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "fetch", Err: err}
	}
	defer rows.Close()

	var backlog []MessageRow
	for rows.Next() {
		row := MessageRow{OwnerID: ownerID}
		var ts sql.NullString
		if err := rows.Scan(&row.ID, &row.Content, &ts); err != nil {
			return nil, &StoreError{Op: "fetch", Err: err}
		}
		if ts.Valid {
			row.Timestamp = ts.String
		}
		backlog = append(backlog, row)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "fetch", Err: err}
	}

	return backlog, nil
}

// MarkProcessed sets the processed flag for exactly the row with the given
// ID. Marking an already-processed row again is a no-op success; the flag
// is never reset to false by this tool.
func (s *MessageStore) MarkProcessed(ctx context.Context, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET processed = 1 WHERE id = ?", s.table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return &StoreError{Op: "mark", Err: err}
	}
	return nil
}

// CountBacklog returns total and unprocessed row counts for an owner.
// Empty ownerID counts the whole table. Used by healthcheck.
func (s *MessageStore) CountBacklog(ctx context.Context, ownerID string) (total, unprocessed int, err error) {
	where := ""
	args := []interface{}{}
	if ownerID != "" {
		where = " WHERE slack_user_id = ?"
		args = append(args, ownerID)
	}

	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(CASE WHEN processed = 0 THEN 1 ELSE 0 END), 0) FROM %s%s", s.table, where)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &unprocessed); err != nil {
		return 0, 0, &StoreError{Op: "probe", Err: err}
	}
	return total, unprocessed, nil
}

// Probe verifies the configured table is queryable.
func (s *MessageStore) Probe(ctx context.Context) error {
	query := fmt.Sprintf("SELECT id FROM %s LIMIT 1", s.table)
	var id int64
	err := s.db.QueryRowContext(ctx, query).Scan(&id)
	if err != nil && err != sql.ErrNoRows {
		return &StoreError{Op: "probe", Err: err}
	}
	return nil
}
