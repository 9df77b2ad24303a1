// Package commands holds the actions behind the apply-service CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/apply-service/internal/apply"
	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/config"
	"jobmate/apply-service/internal/db"
	"jobmate/apply-service/internal/events"
	"jobmate/apply-service/internal/ledger"
	"jobmate/apply-service/internal/logger"
	"jobmate/apply-service/internal/runner"
	"jobmate/apply-service/internal/session"
)

// Version is reported by the CLI and the health endpoint.
const Version = "1.0.0"

// appContext is what every command needs: config, logger and the ledger.
type appContext struct {
	Config *config.Config
	Log    *slog.Logger
	Pool   *pgxpool.Pool
	Ledger *ledger.Postgres
}

func newAppContext(ctx context.Context, envFile string) (*appContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(logger.ParseConfig(cfg.LogLevel, cfg.LogFormat))

	// Every concurrent run holds at most one connection at a time.
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.MaxConcurrentRuns+2)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	l := ledger.NewPostgres(pool)
	if err := l.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &appContext{Config: cfg, Log: log, Pool: pool, Ledger: l}, nil
}

func (a *appContext) Close() {
	a.Pool.Close()
}

// coordinator builds the run coordinator over a Chrome launcher.
func (a *appContext) coordinator(pub events.Publisher) *runner.Coordinator {
	cfg := a.Config
	launcher := browser.NewChromeLauncher(browser.Options{
		Headless:      cfg.Browser.Headless,
		ProfileDir:    cfg.Browser.ProfileDir,
		ActionTimeout: cfg.Browser.ActionTimeout,
		Snapshots:     browser.NewSnapshots(cfg.SnapshotDir),
	}, a.Log)

	return runner.New(launcher, a.Ledger, pub, runner.Options{
		BaseURL: cfg.SiteBaseURL,
		Session: session.Options{Timeout: 2 * cfg.Browser.ActionTimeout},
		Apply:   apply.Options{MaxAttempts: cfg.ApplyMaxAttempts},
		PaceMin: cfg.PaceMin,
		PaceMax: cfg.PaceMax,
	}, a.Log)
}
