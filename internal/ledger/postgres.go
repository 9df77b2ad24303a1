package ledger

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/apply-service/internal/model"
)

//go:embed schema.sql
var schema string

// Postgres is the Ledger backed by the applied_jobs table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the applied_jobs table and its indexes if missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure schema: %w", ErrPersistence, err)
	}
	return nil
}

func (p *Postgres) HasApplied(ctx context.Context, jobURL string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applied_jobs WHERE job_url = $1)`,
		jobURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: lookup %s: %w", ErrPersistence, jobURL, err)
	}
	return exists, nil
}

// Record is a conditional insert: nothing is written when job_url is taken,
// including by a concurrent run that won the race.
func (p *Postgres) Record(ctx context.Context, rec model.AppliedJobRecord) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO applied_jobs (id, profile_id, job_url, job_title, company, applied_at)
		 SELECT $1::uuid, $2::text, $3::text, $4::text, $5::text, $6::timestamptz
		 WHERE NOT EXISTS (
		   SELECT 1 FROM applied_jobs WHERE job_url = $3::text
		 )
		 ON CONFLICT (job_url) DO NOTHING`,
		rec.ID, rec.ProfileID, rec.JobURL, rec.JobTitle, rec.Company, rec.AppliedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%w: insert %s: %w", ErrPersistence, rec.JobURL, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *Postgres) ListByProfile(ctx context.Context, profileID string, limit int) ([]model.AppliedJobRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, profile_id, job_url, job_title, company, applied_at
		 FROM applied_jobs
		 WHERE profile_id = $1
		 ORDER BY applied_at DESC
		 LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query applied_jobs: %w", ErrPersistence, err)
	}
	defer rows.Close()

	var out []model.AppliedJobRecord
	for rows.Next() {
		var r model.AppliedJobRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.JobURL, &r.JobTitle, &r.Company, &r.AppliedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrPersistence, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return out, nil
}
