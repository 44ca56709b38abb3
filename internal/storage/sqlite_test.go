package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "stockfolio.db")

	db, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, table := range []string{"users", "ledgers", "holdings"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stockfolio.db")

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("first OpenSQLite() error = %v", err)
	}
	_ = first.Close()

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("second OpenSQLite() error = %v", err)
	}
	_ = second.Close()
}

func TestMigrateReportsShortStatement(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "stockfolio.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	err = migrate(ctx, db, []string{"DROP TABLE nope"})
	if err == nil || !strings.Contains(err.Error(), "DROP TABLE nope") {
		t.Fatalf("migrate() error = %v; want it to quote the statement", err)
	}
}
