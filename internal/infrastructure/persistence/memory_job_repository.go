package persistence

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/schoolfin/voucher/internal/domain/shared"
	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// InMemoryGenerationJobRepository keeps the most recent jobs in process
// memory. Used when no database driver is configured.
type InMemoryGenerationJobRepository struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]voucher.GenerationJob
	maxJobs int
}

// NewInMemoryGenerationJobRepository keeps at most maxJobs jobs, dropping
// the oldest first
func NewInMemoryGenerationJobRepository(maxJobs int) *InMemoryGenerationJobRepository {
	if maxJobs <= 0 {
		maxJobs = 1000
	}
	return &InMemoryGenerationJobRepository{
		jobs:    make(map[uuid.UUID]voucher.GenerationJob),
		maxJobs: maxJobs,
	}
}

// Save stores a copy of job
func (r *InMemoryGenerationJobRepository) Save(_ context.Context, job *voucher.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[job.ID] = copyJob(job)
	for len(r.jobs) > r.maxJobs {
		var oldest uuid.UUID
		first := true
		for id, j := range r.jobs {
			if first || j.CreatedAt.Before(r.jobs[oldest].CreatedAt) {
				oldest, first = id, false
			}
		}
		delete(r.jobs, oldest)
	}
	return nil
}

// FindByID returns a copy of the job or shared.ErrNotFound
func (r *InMemoryGenerationJobRepository) FindByID(_ context.Context, id uuid.UUID) (*voucher.GenerationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := copyJob(&j)
	return &out, nil
}

// FindRecent returns the newest jobs first
func (r *InMemoryGenerationJobRepository) FindRecent(_ context.Context, limit int) ([]voucher.GenerationJob, error) {
	limit = clampLimit(limit)

	r.mu.RLock()
	all := make([]voucher.GenerationJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		all = append(all, copyJob(&j))
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b voucher.GenerationJob) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// FindCompletedByHash returns the latest completed job for hash
func (r *InMemoryGenerationJobRepository) FindCompletedByHash(_ context.Context, hash string) (*voucher.GenerationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *voucher.GenerationJob
	for _, j := range r.jobs {
		if j.ContentHash != hash || j.Status != voucher.JobStatusCompleted || j.CompletedAt == nil {
			continue
		}
		if best == nil || cmp.Compare(j.CompletedAt.UnixNano(), best.CompletedAt.UnixNano()) > 0 {
			c := copyJob(&j)
			best = &c
		}
	}
	if best == nil {
		return nil, shared.ErrNotFound
	}
	return best, nil
}

func copyJob(j *voucher.GenerationJob) voucher.GenerationJob {
	out := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

var _ voucher.GenerationJobRepository = (*InMemoryGenerationJobRepository)(nil)
