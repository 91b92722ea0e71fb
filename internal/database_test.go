package internal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/replicactl/replicactl/testutil"
)

func TestOpenStore(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	db, err := OpenStore(filepath.Join(dir, "messages.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() after OpenStore() error = %v", err)
	}
}

func TestOpenStoreBadPath(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	// A directory component that does not exist makes the open fail.
	_, err := OpenStore(filepath.Join(dir, "missing", "nested", "messages.db"))
	if err == nil {
		t.Fatal("OpenStore() with unreachable path succeeded")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("OpenStore() error = %v, want StoreError", err)
	}
}
