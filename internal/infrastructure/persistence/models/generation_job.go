package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// GenerationJobModel is the GORM model for the generation_jobs table
type GenerationJobModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocType      string          `gorm:"column:doc_type;type:varchar(20);not null;index"`
	DocNo        string          `gorm:"column:doc_no;type:varchar(100)"`
	Filename     string          `gorm:"type:varchar(255);not null"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	ContentHash  string          `gorm:"column:content_hash;type:varchar(64);index"`
	StorageKey   string          `gorm:"column:storage_key;type:varchar(500)"`
	Size         int64           `gorm:"not null"`
	ErrorCode    string          `gorm:"column:error_code;type:varchar(50)"`
	ErrorMessage string          `gorm:"column:error_message;type:text"`
	CreatedAt    time.Time       `gorm:"not null;index"`
	UpdatedAt    time.Time       `gorm:"not null"`
	CompletedAt  *time.Time      `gorm:"column:completed_at"`
}

// TableName returns the table name for GenerationJobModel
func (GenerationJobModel) TableName() string {
	return "generation_jobs"
}

// ToDomain converts the row to a domain GenerationJob
func (m *GenerationJobModel) ToDomain() *voucher.GenerationJob {
	return &voucher.GenerationJob{
		ID:           m.ID,
		DocType:      voucher.DocType(m.DocType),
		DocNo:        m.DocNo,
		Filename:     m.Filename,
		Total:        m.Total,
		Status:       voucher.JobStatus(m.Status),
		ContentHash:  m.ContentHash,
		StorageKey:   m.StorageKey,
		Size:         m.Size,
		ErrorCode:    m.ErrorCode,
		ErrorMessage: m.ErrorMessage,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		CompletedAt:  m.CompletedAt,
	}
}

// GenerationJobModelFromDomain creates a row from a domain GenerationJob
func GenerationJobModelFromDomain(j *voucher.GenerationJob) *GenerationJobModel {
	return &GenerationJobModel{
		ID:           j.ID,
		DocType:      string(j.DocType),
		DocNo:        j.DocNo,
		Filename:     j.Filename,
		Total:        j.Total,
		Status:       string(j.Status),
		ContentHash:  j.ContentHash,
		StorageKey:   j.StorageKey,
		Size:         j.Size,
		ErrorCode:    j.ErrorCode,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		CompletedAt:  j.CompletedAt,
	}
}

// AllModels lists every table the service migrates
func AllModels() []any {
	return []any{&GenerationJobModel{}}
}
