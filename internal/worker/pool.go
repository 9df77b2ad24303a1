// Package worker consumes queued run requests with a bounded number of
// concurrent runs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/apply-service/internal/browser"
	"jobmate/apply-service/internal/events"
	"jobmate/apply-service/internal/model"
	"jobmate/apply-service/internal/runlock"
)

// Queue is the blocking pop side of a Redis list.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Runner executes one run.
type Runner interface {
	Run(ctx context.Context, cfg model.RunConfig) model.RunResult
}

// Locker serializes runs of one profile.
type Locker interface {
	Acquire(ctx context.Context, profileID string) (func(context.Context) error, error)
}

// Profiles tells whether a profile id is known.
type Profiles interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Options tunes the pool.
type Options struct {
	Workers    int
	Queue      string        // defaults to QueueStartRun
	PopTimeout time.Duration // BLPOP timeout, so workers notice shutdown
	RetryDelay time.Duration // pause after a queue error
}

// Pool runs Workers goroutines, each handling one request at a time.
type Pool struct {
	queue    Queue
	runner   Runner
	locks    Locker
	profiles Profiles
	events   events.Publisher
	opts     Options
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool wires a pool. profiles may be nil to skip the existence check.
func NewPool(q Queue, r Runner, locks Locker, profiles Profiles, pub events.Publisher, opts Options, log *slog.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Queue == "" {
		opts.Queue = QueueStartRun
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 5 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pool{
		queue:    q,
		runner:   r,
		locks:    locks,
		profiles: profiles,
		events:   pub,
		opts:     opts,
		log:      log.With("component", "worker"),
	}
}

// Start launches the workers and returns immediately. Stop them with Shutdown.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.log.Info("starting workers", "count", p.opts.Workers, "queue", p.opts.Queue)
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.loop(ctx, id)
		}(i)
	}
}

// Shutdown cancels the workers and waits up to timeout for them to exit.
// Runs in flight stop after their current posting.
func (p *Pool) Shutdown(timeout time.Duration) {
	if p.cancel == nil {
		return
	}
	p.log.Info("shutdown requested, stopping workers")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("all workers exited cleanly")
	case <-time.After(timeout):
		p.log.Error("shutdown timed out, some runs may still be in progress", "timeout", timeout)
	}
}

func (p *Pool) loop(ctx context.Context, id int) {
	log := p.log.With("worker", id)
	for ctx.Err() == nil {
		vals, err := p.queue.BLPop(ctx, p.opts.PopTimeout, p.opts.Queue).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			log.Warn("queue pop failed", "err", err)
			_ = browser.Sleep(ctx, p.opts.RetryDelay)
			continue
		case len(vals) < 2:
			continue
		}
		p.Handle(ctx, vals[1])
	}
}

// Handle processes one queue payload and publishes its RunFinished event.
// Malformed payloads are logged and dropped.
func (p *Pool) Handle(ctx context.Context, payload string) {
	req, err := ParseRequest(payload)
	if err != nil {
		p.log.Warn("dropping run request", "err", err)
		return
	}
	cfg := req.Config()
	log := p.log.With("request_id", req.RequestID, "profile_id", cfg.ProfileID)
	log.Info("run request received")

	res := p.execute(ctx, cfg, log)

	// The requester waits for this even when the pool is stopping.
	pctx := context.WithoutCancel(ctx)
	p.events.Publish(pctx, events.ChannelRunFinished, events.NewRunFinished(req.RequestID, cfg.ProfileID, res))
	log.Info("run request done", "success", res.Success, "message", res.Message)
}

func (p *Pool) execute(ctx context.Context, cfg model.RunConfig, log *slog.Logger) model.RunResult {
	if err := cfg.Validate(); err != nil {
		return rejected("invalid run config: " + err.Error())
	}

	if p.profiles != nil {
		ok, err := p.profiles.Exists(ctx, cfg.ProfileID)
		if err != nil {
			return rejected(fmt.Sprintf("profile lookup: %v", err))
		}
		if !ok {
			return rejected("profile not found: " + cfg.ProfileID)
		}
	}

	if p.locks != nil {
		release, err := p.locks.Acquire(ctx, cfg.ProfileID)
		if errors.Is(err, runlock.ErrLocked) {
			return rejected(err.Error())
		}
		if err != nil {
			return rejected(fmt.Sprintf("run lock: %v", err))
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("run lock release failed", "err", err)
			}
		}()
	}

	return p.runner.Run(ctx, cfg)
}

func rejected(msg string) model.RunResult {
	now := time.Now().UTC()
	return model.RunResult{
		Success:    false,
		Message:    msg,
		Results:    []model.CandidaturaResult{},
		StartedAt:  now,
		FinishedAt: now,
	}
}
