package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateUpFromPathAppliesAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")

	if err := MigrateUpFromPath(path, "file://migrations"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	// No pending migrations is not an error.
	if err := MigrateUpFromPath(path, "file://migrations"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
}

func TestMigrateUpFromPathBadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite")

	badSource := "file://" + filepath.Join(t.TempDir(), "does-not-exist")
	if err := MigrateUpFromPath(path, badSource); err == nil {
		t.Fatal("expected error for missing migrations source")
	}

	// The failed run must release its connection: a retry with the real
	// migrations succeeds against the same database file.
	if err := MigrateUpFromPath(path, "file://migrations"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	conn, err := OpenWithDefaults(path)
	if err != nil {
		t.Fatalf("failed to open database after retry: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec("SELECT 1 FROM generation_history LIMIT 1"); err != nil {
		t.Errorf("schema not applied after retry: %v", err)
	}
}
