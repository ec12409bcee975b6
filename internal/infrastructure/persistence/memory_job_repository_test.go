package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolfin/voucher/internal/domain/shared"
)

func TestInMemoryGenerationJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryGenerationJobRepository(10)

	job := newTestJob(t, "RV-7")
	require.NoError(t, repo.Save(ctx, job))

	got, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "rv_RV-7.pdf", got.Filename)

	// returned jobs are copies
	got.Filename = "changed"
	again, _ := repo.FindByID(ctx, job.ID)
	assert.Equal(t, "rv_RV-7.pdf", again.Filename)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindCompletedByHash(ctx, job.ContentHash)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, job.StartCapture())
	require.NoError(t, job.Complete("rv/2025/03/a.pdf", 10))
	require.NoError(t, repo.Save(ctx, job))

	done, err := repo.FindCompletedByHash(ctx, job.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, job.ID, done.ID)
	assert.Equal(t, "rv/2025/03/a.pdf", done.StorageKey)
}

func TestInMemoryGenerationJobRepository_RecentAndEviction(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryGenerationJobRepository(3)

	base := time.Now()
	var ids []uuid.UUID
	for i := range 5 {
		j := newTestJob(t, "RV")
		j.CreatedAt = base.Add(time.Duration(i) * time.Second)
		ids = append(ids, j.ID)
		require.NoError(t, repo.Save(ctx, j))
	}

	recent, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[4], recent[0].ID)
	assert.Equal(t, ids[3], recent[1].ID)
	assert.Equal(t, ids[2], recent[2].ID)

	_, err = repo.FindByID(ctx, ids[0])
	assert.ErrorIs(t, err, shared.ErrNotFound)

	two, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}
