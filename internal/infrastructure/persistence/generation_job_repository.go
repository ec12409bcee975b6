package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolfin/voucher/internal/domain/shared"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/persistence/models"
)

const maxRecentJobs = 200

// GormGenerationJobRepository implements voucher.GenerationJobRepository using GORM
type GormGenerationJobRepository struct {
	db *gorm.DB
}

// NewGormGenerationJobRepository creates a new GormGenerationJobRepository
func NewGormGenerationJobRepository(db *gorm.DB) *GormGenerationJobRepository {
	return &GormGenerationJobRepository{db: db}
}

// Save inserts the job or overwrites the row with the same id
func (r *GormGenerationJobRepository) Save(ctx context.Context, job *voucher.GenerationJob) error {
	model := models.GenerationJobModelFromDomain(job)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByID finds a job by ID
func (r *GormGenerationJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*voucher.GenerationJob, error) {
	var model models.GenerationJobModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns the newest jobs first
func (r *GormGenerationJobRepository) FindRecent(ctx context.Context, limit int) ([]voucher.GenerationJob, error) {
	limit = clampLimit(limit)

	var rows []models.GenerationJobModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	jobs := make([]voucher.GenerationJob, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].ToDomain()
	}
	return jobs, nil
}

// FindCompletedByHash returns the latest completed job for a content hash
func (r *GormGenerationJobRepository) FindCompletedByHash(ctx context.Context, hash string) (*voucher.GenerationJob, error) {
	var model models.GenerationJobModel
	if err := r.db.WithContext(ctx).
		Where("content_hash = ? AND status = ?", hash, voucher.JobStatusCompleted.String()).
		Order("completed_at DESC").
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxRecentJobs {
		return maxRecentJobs
	}
	return limit
}

var _ voucher.GenerationJobRepository = (*GormGenerationJobRepository)(nil)
