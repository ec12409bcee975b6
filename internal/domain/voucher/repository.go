package voucher

import (
	"context"

	"github.com/google/uuid"
)

// GenerationJobRepository defines persistence for generation jobs
type GenerationJobRepository interface {
	// Save inserts or updates a job
	Save(ctx context.Context, job *GenerationJob) error

	// FindByID returns the job or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*GenerationJob, error)

	// FindRecent returns the newest jobs first, at most limit
	FindRecent(ctx context.Context, limit int) ([]GenerationJob, error)

	// FindCompletedByHash returns the latest completed job for a content
	// hash, or shared.ErrNotFound
	FindCompletedByHash(ctx context.Context, hash string) (*GenerationJob, error)
}
