package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/db"
	"jobmate/apply-service/internal/events"
	"jobmate/apply-service/internal/profile"
	"jobmate/apply-service/internal/runlock"
	"jobmate/apply-service/internal/scheduler"
	"jobmate/apply-service/internal/worker"
)

// A lock outliving this is assumed to belong to a crashed run.
const runLockTTL = 2 * time.Hour

// ServeAction runs the queue consumer, the housekeeping cron and the health
// endpoint until the process is signalled.
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	// ── Config, PostgreSQL ──────────────────────────────────────────────────
	log.Println("[apply-service] Connecting to PostgreSQL…")
	app, err := newAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()
	log.Println("[apply-service] PostgreSQL connected ✓")
	cfg := app.Config

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[apply-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	log.Println("[apply-service] Redis connected ✓")

	pub := events.NewRedis(rdb, app.Log)

	// ── Worker pool ──────────────────────────────────────────────────────────
	pool := worker.NewPool(
		rdb,
		app.coordinator(pub),
		runlock.New(rdb, runLockTTL),
		profile.NewDirectory(app.Pool),
		pub,
		worker.Options{Workers: cfg.MaxConcurrentRuns},
		app.Log,
	)
	pool.Start(ctx)

	// ── Snapshot retention ───────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if snaps := browser.NewSnapshots(cfg.SnapshotDir); snaps != nil {
		sched = scheduler.New(snaps, cfg.SnapshotRetention, cfg.SweepIntervalHours, app.Log)
		if err := sched.Start(ctx); err != nil {
			pool.Shutdown(time.Second)
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("[apply-service] v%s listening on :%s, %d worker(s)", Version, cfg.Port, cfg.MaxConcurrentRuns)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
	case err = <-srvErr:
		log.Printf("[apply-service] HTTP server error: %v", err)
	}

	log.Println("[apply-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[apply-service] Shutdown error: %v", err)
	}
	if sched != nil {
		sched.Stop()
	}
	// A run in flight finishes its current posting before stopping.
	pool.Shutdown(5 * time.Minute)
	log.Println("[apply-service] Stopped.")
	return err
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "apply-service",
		"version": Version,
	})
}
