package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/repo/migrate"
)

var _ repo.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	dsn  string
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, dsn: dsn, log: log}, nil
}

// Migrate applies the embedded schema through a database/sql handle.
func (s *Store) Migrate(ctx context.Context) error {
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	r, err := migrate.New(db, migrate.Postgres, s.log)
	if err != nil {
		return err
	}
	return r.Up(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ---- ProjectStore ----

const projectColumns = `id, name, url, COALESCE(description, ''), enabled, created_at`

func scanProject(row pgx.Row) (domain.Project, error) {
	var (
		p  domain.Project
		id string
	)
	err := row.Scan(&id, &p.Name, &p.URL, &p.Description, &p.Enabled, &p.CreatedAt)
	p.ID = domain.ProjectID(id)
	return p, err
}

func (s *Store) listProjects(ctx context.Context, q string) ([]domain.Project, error) {
	rows, err := s.pool.Query(ctx, q)
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
	return s.listProjects(ctx, `SELECT `+projectColumns+` FROM projects WHERE enabled ORDER BY created_at, name`)
}

func (s *Store) getProject(ctx context.Context, q string, arg any) (*domain.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return s.getProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, string(id))
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	return s.getProject(ctx, `SELECT `+projectColumns+` FROM projects WHERE lower(name) = lower($1)`, name)
}

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = domain.ProjectID(uuid.NewString())
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (id, name, url, description, enabled)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING created_at`,
		string(p.ID), p.Name, p.URL, p.Description, p.Enabled,
	).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE projects
		    SET name = $2, url = $3, description = NULLIF($4, ''), enabled = $5
		  WHERE id = $1
		  RETURNING created_at`,
		string(p.ID), p.Name, p.URL, p.Description, p.Enabled,
	).Scan(&p.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return repo.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
	case err != nil:
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// ---- ResultStore ----

func (s *Store) InsertResult(ctx context.Context, r domain.NewProbeResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO probe_results (project_id, elapsed_ms, status_code)
		 VALUES ($1, $2, $3)`,
		string(r.ProjectID), r.ElapsedMS, r.StatusCode,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) LatestResult(ctx context.Context, id domain.ProjectID) (*domain.ProbeResult, error) {
	var r domain.ProbeResult
	err := s.pool.QueryRow(ctx,
		`SELECT id, elapsed_ms, status_code, created_at
		   FROM probe_results
		  WHERE project_id = $1
		  ORDER BY created_at DESC, id DESC
		  LIMIT 1`, string(id),
	).Scan(&r.ID, &r.ElapsedMS, &r.StatusCode, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest result: %w", err)
	}
	r.ProjectID = id
	return &r, nil
}

func (s *Store) ResultsSince(ctx context.Context, id domain.ProjectID, since time.Time) ([]domain.ProbeResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, elapsed_ms, status_code, created_at
		   FROM probe_results
		  WHERE ($1 = '' OR project_id = $1) AND created_at > $2
		  ORDER BY created_at DESC, id DESC`,
		string(id), since,
	)
	if err != nil {
		return nil, fmt.Errorf("results since: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProbeResult, 0)
	for rows.Next() {
		var (
			r   domain.ProbeResult
			pid string
		)
		if err := rows.Scan(&r.ID, &pid, &r.ElapsedMS, &r.StatusCode, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.ProjectID = domain.ProjectID(pid)
		out = append(out, r)
	}
	return out, rows.Err()
}
