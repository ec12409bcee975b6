package voucher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolfin/voucher/internal/domain/shared"
)

func TestGenerationJob_Lifecycle(t *testing.T) {
	job, err := NewGenerationJob(&DocumentData{Type: DocTypePaymentVoucher, DocNo: "PV-7",
		Items: []LineItem{item("a", "2", "50")}}, "hash")
	require.NoError(t, err)

	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, "pv_PV-7.pdf", job.Filename)
	assert.Equal(t, "100", job.Total.String())

	assert.ErrorIs(t, job.Complete("key", 1), shared.ErrInvalidState)

	require.NoError(t, job.StartCapture())
	assert.ErrorIs(t, job.Complete("", 1), &shared.DomainError{Code: "INVALID_STORAGE_KEY"})
	require.NoError(t, job.Complete("pv/2025/01/x.pdf", 2048))

	assert.True(t, job.IsCompleted())
	assert.NotNil(t, job.CompletedAt)
	assert.ErrorIs(t, job.Fail("X", "late"), shared.ErrInvalidState)
}

func TestGenerationJob_Fail(t *testing.T) {
	job, err := NewGenerationJob(&DocumentData{Type: DocTypeReturn}, "")
	require.NoError(t, err)
	require.NoError(t, job.StartCapture())
	require.NoError(t, job.Fail("FONT_LOAD_FAILED", "Sarabun did not load"))

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "FONT_LOAD_FAILED", job.ErrorCode)
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusCapturing))
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusPending.CanTransitionTo(JobStatusCompleted))
	assert.True(t, JobStatusCapturing.CanTransitionTo(JobStatusCompleted))
	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusFailed.CanTransitionTo(JobStatusCapturing))
}
