package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/apply-service/internal/db"
	"jobmate/apply-service/internal/ledger"
	"jobmate/apply-service/internal/model"
)

// startPostgres runs a throwaway PostgreSQL container. The test is skipped
// when Docker is not reachable.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	dpool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := dpool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	res, err := dpool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=jobmate",
			"POSTGRES_PASSWORD=jobmate",
			"POSTGRES_DB=jobmate",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dpool.Purge(res) })
	_ = res.Expire(300)

	dsn := fmt.Sprintf("postgres://jobmate:jobmate@%s/jobmate?sslmode=disable", res.GetHostPort("5432/tcp"))

	var pool *pgxpool.Pool
	dpool.MaxWait = 90 * time.Second
	require.NoError(t, dpool.Retry(func() error {
		p, err := db.NewPostgresPool(context.Background(), dsn, 4)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}))
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgres_Ledger(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	l := ledger.NewPostgres(pool)

	require.NoError(t, l.EnsureSchema(ctx))
	require.NoError(t, l.EnsureSchema(ctx), "schema creation is idempotent")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := func(profile, url string, at time.Time) model.AppliedJobRecord {
		return model.NewAppliedJobRecord(profile, model.JobPosting{URL: url, Title: "Go Engineer", Company: "Acme"}, at)
	}

	t.Run("record and lookup", func(t *testing.T) {
		inserted, err := l.Record(ctx, rec("p1", "https://jobs.example.test/jobs/view/1", base))
		require.NoError(t, err)
		assert.True(t, inserted)

		applied, err := l.HasApplied(ctx, "https://jobs.example.test/jobs/view/1")
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = l.HasApplied(ctx, "https://jobs.example.test/jobs/view/2")
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("duplicate url is not inserted", func(t *testing.T) {
		inserted, err := l.Record(ctx, rec("p2", "https://jobs.example.test/jobs/view/1", base))
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("concurrent writers keep one row", func(t *testing.T) {
		const url = "https://jobs.example.test/jobs/view/99"
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Record(ctx, rec(fmt.Sprintf("p%d", i), url, base))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM applied_jobs WHERE job_url = $1`, url).Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("list by profile newest first", func(t *testing.T) {
		_, err := l.Record(ctx, rec("p3", "https://jobs.example.test/jobs/view/10", base))
		require.NoError(t, err)
		_, err = l.Record(ctx, rec("p3", "https://jobs.example.test/jobs/view/11", base.Add(time.Hour)))
		require.NoError(t, err)

		got, err := l.ListByProfile(ctx, "p3", 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "https://jobs.example.test/jobs/view/11", got[0].JobURL)
		assert.True(t, got[0].AppliedAt.Equal(base.Add(time.Hour)))

		got, err = l.ListByProfile(ctx, "p3", 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
