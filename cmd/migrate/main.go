// Command migrate applies, inspects or rolls back the schema.
//
//	migrate up
//	migrate status
//	migrate down [version]
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/statuspage/internal/config"
	"github.com/hamed0406/statuspage/internal/repo/migrate"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	var (
		driver, dsn string
		dialect     migrate.Dialect
	)
	switch {
	case cfg.DatabaseURL != "":
		driver, dsn, dialect = "pgx", cfg.DatabaseURL, migrate.Postgres
	case cfg.SQLitePath != "":
		driver, dsn, dialect = "sqlite", cfg.SQLitePath, migrate.SQLite
	default:
		return fmt.Errorf("set DATABASE_URL or SQLITE_PATH")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	r, err := migrate.New(db, dialect, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "up":
		return r.Up(ctx)
	case "status":
		return r.Status(ctx)
	case "down":
		var target int64 = -1
		if len(args) > 1 {
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("bad version %q: %w", args[1], err)
			}
			target = v
		}
		if err := r.Down(ctx, target); err != nil {
			return err
		}
		v, err := r.Version(ctx)
		if err != nil {
			return err
		}
		log.Info("migrate_version", zap.Int64("version", v))
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, status or down)", cmd)
	}
}
