package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

// DefaultTable is the messages table name used by test databases.
const DefaultTable = "slack_messages"

// CreateInMemoryDB creates an in-memory SQLite database with an empty
// messages table for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	CreateMessagesTable(t, db, DefaultTable)
	return db
}

// CreateMessagesTable creates a messages table with the given name
func CreateMessagesTable(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slack_user_id TEXT NOT NULL,
		message_content TEXT NOT NULL,
		slack_message_ts TEXT,
		processed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`, table)
	if _, err := db.Exec(createTableSQL); err != nil {
		t.Fatalf("Failed to create %s table: %v", table, err)
	}
}

// InsertMessage inserts a message row and returns its ID
func InsertMessage(t *testing.T, db *sql.DB, owner, content, ts, createdAt string, processed bool) int64 {
	t.Helper()
	p := 0
	if processed {
		p = 1
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (slack_user_id, message_content, slack_message_ts, processed, created_at) VALUES (?, ?, ?, ?, ?)", DefaultTable)
	res, err := db.Exec(insertSQL, owner, content, ts, p, createdAt)
	if err != nil {
		t.Fatalf("Failed to insert message: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get inserted message ID: %v", err)
	}
	return id
}

// CreateTestDB creates a test database with sample backlog data for two
// owners, mixing processed and unprocessed rows
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	rows := []struct {
		owner     string
		content   string
		ts        string
		createdAt string
		processed bool
	}{
		{"U001", "hello team", "1700000001.000100", "2024-01-01T10:00:00Z", false},
		{"U001", "standup in five", "1700000002.000100", "2024-01-01T11:00:00Z", false},
		{"U001", "already ingested", "1700000000.000100", "2024-01-01T09:00:00Z", true},
		{"U002", "other owner message", "1700000003.000100", "2024-01-01T12:00:00Z", false},
	}

	for _, r := range rows {
		InsertMessage(t, db, r.owner, r.content, r.ts, r.createdAt, r.processed)
	}

	return db
}

// ProcessedFlag returns the processed flag for a row
func ProcessedFlag(t *testing.T, db *sql.DB, id int64) bool {
	t.Helper()
	var p int
	query := fmt.Sprintf("SELECT processed FROM %s WHERE id = ?", DefaultTable)
	if err := db.QueryRow(query, id).Scan(&p); err != nil {
		t.Fatalf("Failed to read processed flag for row %d: %v", id, err)
	}
	return p != 0
}
