package handler

import (
	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// DocTypeQuery selects a variant
type DocTypeQuery struct {
	Type string `form:"type" binding:"required,doctype"`
}

// PreviewResponse is the live preview of a document
type PreviewResponse struct {
	HTML           string `json:"html"`
	Total          string `json:"total"`
	TotalFormatted string `json:"totalFormatted"`
	Rows           int    `json:"rows"`
}

func toPreviewResponse(r *document.PreviewResult) PreviewResponse {
	return PreviewResponse{
		HTML:           r.HTML,
		Total:          r.Total.StringFixed(2),
		TotalFormatted: voucher.FormatMoney(r.Total),
		Rows:           r.Rows,
	}
}

// DraftResponse is a draft session and its current content
type DraftResponse struct {
	ID       string                `json:"id"`
	Document *voucher.DocumentData `json:"document"`
	Total    string                `json:"total"`
}

func toDraftResponse(id string, data *voucher.DocumentData) DraftResponse {
	return DraftResponse{ID: id, Document: data, Total: data.Total().StringFixed(2)}
}

// ReplaceItemsRequest replaces all line items of a draft
type ReplaceItemsRequest struct {
	Items []voucher.LineItem `json:"items" binding:"max=200"`
}

// PullRequest names the document whose items are pulled in
type PullRequest struct {
	DocNo string `json:"docNo" binding:"required,max=64"`
}

// PullResponse reports a pull
type PullResponse struct {
	Source string        `json:"source"`
	Added  int           `json:"added"`
	Draft  DraftResponse `json:"draft"`
}

// SubmitRequest carries the case fields the document does not hold
type SubmitRequest struct {
	CategoryID string `json:"categoryId" binding:"max=64"`
}

// ListGenerationsQuery pages the job history
type ListGenerationsQuery struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=200"`
}
