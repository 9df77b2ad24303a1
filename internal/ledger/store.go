package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jobmate/apply-service/internal/model"
)

// RunStore is the two-tier deduplication store of a single run: a memory
// set in front of the durable Ledger. It is created at run start and
// discarded with the run.
type RunStore struct {
	ledger Ledger
	log    *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRunStore returns an empty store over l.
func NewRunStore(l Ledger, log *slog.Logger) *RunStore {
	if log == nil {
		log = slog.Default()
	}
	return &RunStore{
		ledger: l,
		log:    log.With("component", "ledger"),
		now:    time.Now,
		seen:   make(map[string]struct{}),
	}
}

func (s *RunStore) remember(key string) {
	s.mu.Lock()
	s.seen[key] = struct{}{}
	s.mu.Unlock()
}

// HasApplied checks the memory set, then the ledger. A ledger hit is copied
// into memory. On a ledger error the answer is false and the error is
// returned so the caller can treat the posting as uncertain.
func (s *RunStore) HasApplied(ctx context.Context, jobURL string) (bool, error) {
	key := model.NormalizeURL(jobURL)

	s.mu.Lock()
	_, ok := s.seen[key]
	s.mu.Unlock()
	if ok {
		return true, nil
	}

	applied, err := s.ledger.HasApplied(ctx, key)
	if err != nil {
		return false, err
	}
	if applied {
		s.remember(key)
	}
	return applied, nil
}

// Record writes the ledger first, then the memory set. The memory set is
// updated even when the ledger write fails so this run never re-applies;
// the returned error wraps ErrPersistence and the caller should log it.
func (s *RunStore) Record(ctx context.Context, profileID string, p model.JobPosting) error {
	p.URL = model.NormalizeURL(p.URL)
	rec := model.NewAppliedJobRecord(profileID, p, s.now())

	inserted, err := s.ledger.Record(ctx, rec)
	s.remember(p.URL)
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Debug("ledger already had posting", "job_url", p.URL)
	}
	return nil
}
