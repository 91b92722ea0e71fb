package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/replicactl/replicactl/testutil"
)

func TestFetchUnprocessed(t *testing.T) {
	db := testutil.CreateTestDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	tests := []struct {
		name  string
		owner string
		want  []string // expected contents, in order
	}{
		{
			name:  "owner with backlog",
			owner: "U001",
			want:  []string{"hello team", "standup in five"},
		},
		{
			name:  "other owner",
			owner: "U002",
			want:  []string{"other owner message"},
		},
		{
			name:  "unknown owner",
			owner: "U999",
			want:  nil,
		},
		{
			name:  "empty owner",
			owner: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.FetchUnprocessed(context.Background(), tt.owner)
			if err != nil {
				t.Fatalf("FetchUnprocessed() error = %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("FetchUnprocessed() returned %d rows, want %d", len(rows), len(tt.want))
			}
			for i, content := range tt.want {
				if rows[i].Content != content {
					t.Errorf("rows[%d].Content = %q, want %q", i, rows[i].Content, content)
				}
			}
		})
	}
}

func TestFetchUnprocessedOrdering(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	// Inserted newest first; fetch order must follow created_at, not
	// insertion or ID order.
	testutil.InsertMessage(t, db, "U001", "third", "3.0", "2024-01-03T00:00:00Z", false)
	testutil.InsertMessage(t, db, "U001", "first", "1.0", "2024-01-01T00:00:00Z", false)
	testutil.InsertMessage(t, db, "U001", "second", "2.0", "2024-01-02T00:00:00Z", false)

	rows, err := store.FetchUnprocessed(context.Background(), "U001")
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(rows) != len(want) {
		t.Fatalf("FetchUnprocessed() returned %d rows, want %d", len(rows), len(want))
	}
	for i, content := range want {
		if rows[i].Content != content {
			t.Errorf("rows[%d].Content = %q, want %q", i, rows[i].Content, content)
		}
	}
}

func TestFetchUnprocessedSkipsProcessed(t *testing.T) {
	db := testutil.CreateTestDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	rows, err := store.FetchUnprocessed(context.Background(), "U001")
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}
	for _, row := range rows {
		if row.Content == "already ingested" {
			t.Error("FetchUnprocessed() returned a processed row")
		}
	}
}

func TestMarkProcessed(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	id := testutil.InsertMessage(t, db, "U001", "hello", "1.0", "2024-01-01T00:00:00Z", false)
	other := testutil.InsertMessage(t, db, "U001", "untouched", "2.0", "2024-01-02T00:00:00Z", false)

	if err := store.MarkProcessed(context.Background(), id); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if !testutil.ProcessedFlag(t, db, id) {
		t.Error("processed flag not set")
	}
	if testutil.ProcessedFlag(t, db, other) {
		t.Error("MarkProcessed() touched another row")
	}

	// Idempotent: marking again is a no-op success.
	if err := store.MarkProcessed(context.Background(), id); err != nil {
		t.Fatalf("second MarkProcessed() error = %v", err)
	}
	if !testutil.ProcessedFlag(t, db, id) {
		t.Error("processed flag reset by second mark")
	}
}

func TestMarkProcessedUnknownID(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	// Updating a row that does not exist affects nothing and is not an error.
	if err := store.MarkProcessed(context.Background(), 12345); err != nil {
		t.Errorf("MarkProcessed() unknown id error = %v", err)
	}
}

func TestCountBacklog(t *testing.T) {
	db := testutil.CreateTestDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	total, unprocessed, err := store.CountBacklog(context.Background(), "U001")
	if err != nil {
		t.Fatalf("CountBacklog() error = %v", err)
	}
	if total != 3 || unprocessed != 2 {
		t.Errorf("CountBacklog(U001) = %d total, %d unprocessed; want 3, 2", total, unprocessed)
	}

	total, unprocessed, err = store.CountBacklog(context.Background(), "")
	if err != nil {
		t.Fatalf("CountBacklog() error = %v", err)
	}
	if total != 4 || unprocessed != 3 {
		t.Errorf("CountBacklog(all) = %d total, %d unprocessed; want 4, 3", total, unprocessed)
	}
}

func TestStoreMissingTable(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewMessageStore(db, "no_such_table")

	var storeErr *StoreError

	if err := store.Probe(context.Background()); !errors.As(err, &storeErr) {
		t.Errorf("Probe() error = %v, want StoreError", err)
	}
	if _, err := store.FetchUnprocessed(context.Background(), "U001"); !errors.As(err, &storeErr) {
		t.Errorf("FetchUnprocessed() error = %v, want StoreError", err)
	}
	if err := store.MarkProcessed(context.Background(), 1); !errors.As(err, &storeErr) {
		t.Errorf("MarkProcessed() error = %v, want StoreError", err)
	}
}

func TestProbeEmptyTable(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewMessageStore(db, testutil.DefaultTable)

	if err := store.Probe(context.Background()); err != nil {
		t.Errorf("Probe() on empty table error = %v", err)
	}
}
