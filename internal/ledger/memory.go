package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jobmate/apply-service/internal/model"
)

// Memory is an in-process Ledger. ReadErr and WriteErr, when set, make the
// corresponding calls fail with ErrPersistence.
type Memory struct {
	mu      sync.Mutex
	records []model.AppliedJobRecord

	ReadErr  error
	WriteErr error
}

// NewMemory returns an empty in-process ledger.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) HasApplied(ctx context.Context, jobURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, m.ReadErr)
	}
	for _, r := range m.records {
		if r.JobURL == jobURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) Record(ctx context.Context, rec model.AppliedJobRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, m.WriteErr)
	}
	for _, r := range m.records {
		if r.JobURL == rec.JobURL {
			return false, nil
		}
	}
	m.records = append(m.records, rec)
	return true, nil
}

func (m *Memory) ListByProfile(ctx context.Context, profileID string, limit int) ([]model.AppliedJobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, m.ReadErr)
	}
	var out []model.AppliedJobRecord
	for _, r := range m.records {
		if r.ProfileID == profileID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
