// Package ledger remembers which postings were applied to.
//
// The Ledger is the durable, cross-run record; RunStore layers a per-run
// memory set on top of it so a run never re-applies even when the ledger is
// unreachable.
package ledger

import (
	"context"
	"errors"

	"jobmate/apply-service/internal/model"
)

// ErrPersistence wraps any failure to read or write the durable ledger.
var ErrPersistence = errors.New("ledger persistence failed")

// Ledger is the durable applied-jobs history.
type Ledger interface {
	// HasApplied reports whether any profile already applied to jobURL.
	HasApplied(ctx context.Context, jobURL string) (bool, error)
	// Record inserts rec unless a record for rec.JobURL exists. It reports
	// whether a row was written.
	Record(ctx context.Context, rec model.AppliedJobRecord) (bool, error)
	// ListByProfile returns the newest records of a profile first.
	ListByProfile(ctx context.Context, profileID string, limit int) ([]model.AppliedJobRecord, error)
}
