package document

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// PDFContentType is the media type of every artifact
const PDFContentType = "application/pdf"

// Artifact is a generated PDF held in memory
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Size        int
	JobID       uuid.UUID
	Total       decimal.Decimal
	CacheHit    bool
}

// PreviewResult is the live preview of a document
type PreviewResult struct {
	HTML  string
	Page  *voucher.PageDescription
	Total decimal.Decimal
	// Rows counts item rows plus padding
	Rows int
}

// DocTypeInfo describes one variant for clients building a form
type DocTypeInfo struct {
	Type         voucher.DocType  `json:"type"`
	DisplayName  string           `json:"displayName"`
	Abbreviation string           `json:"abbreviation"`
	MinRows      int              `json:"minRows"`
	HasQuantity  bool             `json:"hasQuantity"`
	Columns      []voucher.Column `json:"columns"`
}

// SubmitResult is the outcome of SaveAndGenerate
type SubmitResult struct {
	CaseID   string
	CaseNo   string
	DocNo    string
	Artifact *Artifact
}

// PullResult is the outcome of PullDocument
type PullResult struct {
	Source   string
	Added    int
	Document *voucher.DocumentData
}

// JobResponse is a generation job as shown to clients
type JobResponse struct {
	ID           uuid.UUID  `json:"id"`
	DocType      string     `json:"docType"`
	DocNo        string     `json:"docNo,omitempty"`
	Filename     string     `json:"filename"`
	Total        string     `json:"total"`
	Status       string     `json:"status"`
	Size         int64      `json:"size,omitempty"`
	ErrorCode    string     `json:"errorCode,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Download is a stored artifact ready to send. Exactly one of Body and
// RedirectURL is set.
type Download struct {
	Job         *JobResponse
	Body        io.ReadCloser
	RedirectURL string
}

func toJobResponse(j *voucher.GenerationJob) *JobResponse {
	return &JobResponse{
		ID:           j.ID,
		DocType:      string(j.DocType),
		DocNo:        j.DocNo,
		Filename:     j.Filename,
		Total:        j.Total.StringFixed(2),
		Status:       j.Status.String(),
		Size:         j.Size,
		ErrorCode:    j.ErrorCode,
		ErrorMessage: j.ErrorMessage,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
}
