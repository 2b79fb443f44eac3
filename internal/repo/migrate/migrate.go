// Package migrate applies the embedded schema migrations with goose.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var migrations embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

func (d Dialect) dir() (string, error) {
	switch d {
	case Postgres:
		return "sql/postgres", nil
	case SQLite:
		return "sql/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// Runner wraps database migration capabilities.
type Runner struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

func New(db *sql.DB, dialect Dialect, log *zap.Logger) (Runner, error) {
	if db == nil {
		return Runner{}, errors.New("nil database provided")
	}
	if _, err := dialect.dir(); err != nil {
		return Runner{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return Runner{db: db, dialect: dialect, log: log}, nil
}

// Up applies pending migrations.
func (r Runner) Up(ctx context.Context) error {
	return r.with(func(dir string) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		r.log.Info("migrations_apply", zap.String("dialect", string(r.dialect)))
		if err := goose.UpContext(runCtx, r.db, dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// Status logs applied and pending migrations.
func (r Runner) Status(ctx context.Context) error {
	return r.with(func(dir string) error {
		if err := goose.StatusContext(ctx, r.db, dir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back the latest migration, or down to targetVersion when it is positive.
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.with(func(dir string) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if targetVersion > 0 {
			r.log.Info("migrations_rollback", zap.Int64("target", targetVersion))
			if err := goose.DownToContext(runCtx, r.db, dir, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
			return nil
		}
		r.log.Info("migrations_rollback_latest")
		if err := goose.DownContext(runCtx, r.db, dir); err != nil {
			return fmt.Errorf("rollback latest migration: %w", err)
		}
		return nil
	})
}

// Version reports the current schema version.
func (r Runner) Version(ctx context.Context) (int64, error) {
	var v int64
	err := r.with(func(string) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, r.db)
		return err
	})
	return v, err
}

func (r Runner) with(fn func(dir string) error) error {
	dir, err := r.dialect.dir()
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{r.log.Sugar()})
	if err := goose.SetDialect(string(r.dialect)); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return fn(dir)
}

type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
