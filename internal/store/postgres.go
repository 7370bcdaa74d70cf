package store

import (
	"context"
	stderrors "errors"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL creates the application tracking table. The unique index on
// job_url is the dedup invariant: correctness under concurrent runs comes
// from the database, not from application logic.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS job_applications (
	id              BIGSERIAL PRIMARY KEY,
	job_title       TEXT NOT NULL,
	job_url         TEXT NOT NULL,
	company_name    TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	applied         BOOLEAN NOT NULL DEFAULT FALSE,
	status          TEXT NOT NULL DEFAULT 'pending',
	resume_used     TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	screenshot_path TEXT NOT NULL DEFAULT '',
	applied_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS job_applications_job_url_key
	ON job_applications (job_url);
`

const insertOrIgnoreSQL = `
INSERT INTO job_applications
	(job_title, job_url, company_name, location, applied, status, resume_used, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (job_url) DO NOTHING
RETURNING id
`

const finalizeSQL = `
UPDATE job_applications
SET applied = $2, status = $3, screenshot_path = $4, notes = $5, applied_at = now()
WHERE job_url = $1
`

// Stats summarizes the application tracking table.
type Stats struct {
	Total       int64   `json:"total"`
	Applied     int64   `json:"applied"`
	Pending     int64   `json:"pending"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"successRate"`
}

// ApplicationStore is the pgx-backed application record store.
type ApplicationStore struct {
	pool   *pgxpool.Pool
	logger *errors.Logger
}

// NewApplicationStore connects a pool to the configured database and verifies
// the connection.
func NewApplicationStore(ctx context.Context, cfg *config.DatabaseConfig, logger *errors.Logger) (*ApplicationStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "Invalid database URL", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, errors.MapDBError(err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, errors.MapDBError(err)
	}

	logger.Debug("Application store connected",
		"max_conns", poolCfg.MaxConns)

	return &ApplicationStore{pool: pool, logger: logger}, nil
}

// EnsureSchema creates the tracking table and its unique URL index.
func (s *ApplicationStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return errors.MapDBError(err)
	}
	return nil
}

// ExistingIDs returns the set of every job URL the store already tracks.
func (s *ApplicationStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT job_url FROM job_applications`)
	if err != nil {
		return nil, errors.MapDBError(err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, errors.MapDBError(err)
		}
		ids[url] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.MapDBError(err)
	}

	return ids, nil
}

// Exists reports whether a URL is already tracked.
func (s *ApplicationStore) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_applications WHERE job_url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, errors.MapDBError(err)
	}
	return exists, nil
}

// InsertOrIgnore atomically claims a URL by inserting a pending record. The
// single INSERT ... ON CONFLICT DO NOTHING statement is the whole claim; there
// is no check-then-insert window. A lost race returns (false, nil), never an
// error.
func (s *ApplicationStore) InsertOrIgnore(ctx context.Context, rec types.ApplicationRecord) (bool, error) {
	var id int64
	err := s.pool.QueryRow(ctx, insertOrIgnoreSQL,
		rec.JobTitle, rec.JobURL, rec.CompanyName, rec.Location,
		rec.Applied, string(rec.Status), rec.ResumeUsed, rec.Notes).Scan(&id)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			// Conflict: another run already owns this URL
			return false, nil
		}
		return false, errors.MapDBError(err)
	}

	s.logger.Debug("Application record claimed",
		"id", id,
		"job_url", rec.JobURL)
	return true, nil
}

// Finalize records the outcome of a submission attempt on the claimed record.
func (s *ApplicationStore) Finalize(ctx context.Context, url string, applied bool, status types.ApplicationStatus, screenshotPath, notes string) error {
	tag, err := s.pool.Exec(ctx, finalizeSQL, url, applied, string(status), screenshotPath, notes)
	if err != nil {
		return errors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewStorageError(errors.ErrCodeRecordNotFound,
			"No application record to finalize for "+url, nil)
	}
	return nil
}

// Stats aggregates the tracking table into totals and a success rate.
func (s *ApplicationStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'applied'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM job_applications`).
		Scan(&stats.Total, &stats.Applied, &stats.Pending, &stats.Failed)
	if err != nil {
		return Stats{}, errors.MapDBError(err)
	}

	stats.SuccessRate = successRate(stats.Applied, stats.Total)
	return stats, nil
}

// Close releases the connection pool.
func (s *ApplicationStore) Close() {
	s.pool.Close()
}

// successRate computes applied/total as a percentage, 0 for an empty table
func successRate(applied, total int64) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(applied) / float64(total) * 100.0
}
