package voucher

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfin/voucher/internal/domain/shared"
)

// JobStatus is the state of an artifact generation
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusCapturing JobStatus = "CAPTURING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true for COMPLETED and FAILED
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can move to target
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	switch s {
	case JobStatusPending:
		return target == JobStatusCapturing || target == JobStatusFailed
	case JobStatusCapturing:
		return target == JobStatusCompleted || target == JobStatusFailed
	}
	return false
}

// GenerationJob records one generateArtifact run: which document was
// captured, where the PDF went and how it ended.
type GenerationJob struct {
	ID           uuid.UUID
	DocType      DocType
	DocNo        string
	Filename     string
	Total        decimal.Decimal
	Status       JobStatus
	ContentHash  string
	StorageKey   string
	Size         int64
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// NewGenerationJob creates a pending job for a document snapshot
func NewGenerationJob(data *DocumentData, contentHash string) (*GenerationJob, error) {
	if data == nil || !data.Type.IsValid() {
		return nil, ErrInvalidDocType
	}
	now := time.Now()
	return &GenerationJob{
		ID:          uuid.New(),
		DocType:     data.Type,
		DocNo:       data.DocNo,
		Filename:    data.Filename(),
		Total:       data.Total(),
		Status:      JobStatusPending,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// StartCapture marks the job as capturing
func (j *GenerationJob) StartCapture() error {
	if !j.Status.CanTransitionTo(JobStatusCapturing) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot start capture from status: "+j.Status.String())
	}
	j.Status = JobStatusCapturing
	j.UpdatedAt = time.Now()
	return nil
}

// Complete marks the job as completed with the stored artifact
func (j *GenerationJob) Complete(storageKey string, size int64) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot complete from status: "+j.Status.String())
	}
	if storageKey == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.StorageKey = storageKey
	j.Size = size
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Fail marks the job as failed
func (j *GenerationJob) Fail(code, message string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorCode = code
	j.ErrorMessage = message
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// IsCompleted returns true if the job produced an artifact
func (j *GenerationJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}
