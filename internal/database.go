package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenStore opens the SQLite message database read-write; training flips
// the processed flag in place.
func OpenStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "open", Err: fmt.Errorf("ping failed: %w", err)}
	}

	return db, nil
}
