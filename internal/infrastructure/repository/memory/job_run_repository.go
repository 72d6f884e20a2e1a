package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-vault/internal/domain/jobscheduler"
)

const DefaultJobRunHistorySize = 200

// JobRunRepository keeps the most recent scheduler runs in a fixed ring.
type JobRunRepository struct {
	mu    sync.RWMutex
	items []jobscheduler.RunEvent
	next  int
	full  bool
}

func NewJobRunRepository(size int) *JobRunRepository {
	if size <= 0 {
		size = DefaultJobRunHistorySize
	}
	return &JobRunRepository{items: make([]jobscheduler.RunEvent, size)}
}

func (r *JobRunRepository) RecordRun(_ context.Context, event jobscheduler.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.next] = event
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *JobRunRepository) ListRuns(_ context.Context, limit int) ([]jobscheduler.RunEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.next
	if r.full {
		count = len(r.items)
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	out := make([]jobscheduler.RunEvent, 0, limit)
	idx := r.next
	for len(out) < limit {
		idx = (idx - 1 + len(r.items)) % len(r.items)
		out = append(out, r.items[idx])
	}
	return out, nil
}
