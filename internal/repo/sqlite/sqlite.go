// Package sqlite is the single-file store used when no DATABASE_URL is set.
// Timestamps are kept as unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/repo/migrate"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	// Now stamps rows written by this store.
	Now func() time.Time

	db  *sql.DB
	log *zap.Logger
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{
		Now: func() time.Time { return time.Now().UTC() },
		db:  db,
		log: log,
	}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	r, err := migrate.New(db, migrate.SQLite, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := r.Up(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("sqlite_close_error", zap.Error(err))
	}
}

func (s *Store) nowMS() int64 { return s.Now().UnixMilli() }

func fromMS(v int64) time.Time { return time.UnixMilli(v).UTC() }

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// ---- ProjectStore ----

const projectColumns = `id, name, url, COALESCE(description, ''), enabled, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (domain.Project, error) {
	var (
		p       domain.Project
		id      string
		created int64
	)
	if err := row.Scan(&id, &p.Name, &p.URL, &p.Description, &p.Enabled, &created); err != nil {
		return p, err
	}
	p.ID = domain.ProjectID(id)
	p.CreatedAt = fromMS(created)
	return p, nil
}

func (s *Store) listProjects(ctx context.Context, q string) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.listProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, name`)
}

func (s *Store) ListEnabledProjects(ctx context.Context) ([]domain.Project, error) {
	return s.listProjects(ctx, `SELECT `+projectColumns+` FROM projects WHERE enabled = 1 ORDER BY created_at, name`)
}

func (s *Store) getProject(ctx context.Context, q string, arg any) (*domain.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return s.getProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, string(id))
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	return s.getProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ? COLLATE NOCASE`, name)
}

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = domain.ProjectID(uuid.NewString())
	}
	now := s.nowMS()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, url, description, enabled, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), p.Name, p.URL, nullable(p.Description), p.Enabled, now,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.CreatedAt = fromMS(now)
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, url = ?, description = ?, enabled = ? WHERE id = ?`,
		p.Name, p.URL, nullable(p.Description), p.Enabled, string(p.ID),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	cur, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = cur.CreatedAt
	return nil
}

// ---- ResultStore ----

func (s *Store) InsertResult(ctx context.Context, r domain.NewProbeResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO probe_results (project_id, elapsed_ms, status_code, created_at) VALUES (?, ?, ?, ?)`,
		string(r.ProjectID), r.ElapsedMS, r.StatusCode, s.nowMS(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) LatestResult(ctx context.Context, id domain.ProjectID) (*domain.ProbeResult, error) {
	var (
		r       domain.ProbeResult
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, elapsed_ms, status_code, created_at
		   FROM probe_results
		  WHERE project_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT 1`, string(id),
	).Scan(&r.ID, &r.ElapsedMS, &r.StatusCode, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest result: %w", err)
	}
	r.ProjectID = id
	r.CreatedAt = fromMS(created)
	return &r, nil
}

func (s *Store) ResultsSince(ctx context.Context, id domain.ProjectID, since time.Time) ([]domain.ProbeResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, elapsed_ms, status_code, created_at
		   FROM probe_results
		  WHERE (? = '' OR project_id = ?) AND created_at > ?
		  ORDER BY created_at DESC, id DESC`,
		string(id), string(id), since.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("results since: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProbeResult, 0)
	for rows.Next() {
		var (
			r       domain.ProbeResult
			pid     string
			created int64
		)
		if err := rows.Scan(&r.ID, &pid, &r.ElapsedMS, &r.StatusCode, &created); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.ProjectID = domain.ProjectID(pid)
		r.CreatedAt = fromMS(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
