package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunner_UpDownSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	r, err := New(db, SQLite, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	v, err := r.Version(ctx)
	if err != nil || v != 2 {
		t.Fatalf("version after up: %d %v", v, err)
	}

	// second Up is a no-op
	if err := r.Up(ctx); err != nil {
		t.Fatalf("Up again: %v", err)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ('p1', 'api')`); err != nil {
		t.Fatalf("schema not usable: %v", err)
	}

	if err := r.Down(ctx, 0); err != nil {
		t.Fatalf("Down: %v", err)
	}
	v, _ = r.Version(ctx)
	if v != 1 {
		t.Fatalf("version after down: %d", v)
	}
}

func TestNew_RejectsUnknownDialect(t *testing.T) {
	db := openSQLite(t)
	if _, err := New(db, Dialect("oracle"), nil); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	if _, err := New(nil, SQLite, nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
