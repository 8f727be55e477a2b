package sqlitedb

import (
	"errors"
	"path/filepath"
	"testing"
)

var testMigrations = []Migration{
	{Version: 1, SQL: `CREATE TABLE items (name TEXT PRIMARY KEY);`},
	{Version: 2, SQL: `ALTER TABLE items ADD COLUMN size INTEGER NOT NULL DEFAULT 0;`},
}

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := Open(path, testMigrations)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO items(name, size) VALUES ('a', 1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = db.Close()

	db, err = Open(path, testMigrations)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var version int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Fatalf("expected version 2, got %d", version)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path, testMigrations)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()
	if _, err := Open(path, testMigrations[:1]); err == nil {
		t.Fatal("expected error for schema newer than supported")
	}
}

func TestOpenRejectsDirectory(t *testing.T) {
	if _, err := Open(t.TempDir(), testMigrations); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	err := WithRetry("op", func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %v after %d", err, calls)
	}

	calls = 0
	err = WithRetry("op", func() error {
		calls++
		return errors.New("syntax error")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected a single failing call, got %v after %d", err, calls)
	}
}
