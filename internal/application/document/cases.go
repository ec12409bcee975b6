package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/caseapi"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
)

const (
	// DefaultPurpose is sent when neither a purpose nor any item
	// description was entered
	DefaultPurpose = "ค่าใช้จ่ายทั่วไป"
	// PulledUnit is the unit given to pulled items that have none
	PulledUnit = "รายการ"
)

// CasePayload builds the case request for a document: the total as the
// requested amount, and the purpose followed by the item descriptions.
func CasePayload(data *voucher.DocumentData, categoryID string) *caseapi.CreateCaseRequest {
	var descs []string
	for _, it := range data.Items {
		if d := strings.TrimSpace(it.Description); d != "" {
			descs = append(descs, d)
		}
	}

	purpose := data.Purpose
	if len(descs) > 0 {
		joined := strings.Join(descs, ", ")
		if purpose != "" {
			purpose = purpose + " : " + joined
		} else {
			purpose = joined
		}
	}
	if strings.TrimSpace(purpose) == "" {
		purpose = DefaultPurpose
	}

	return &caseapi.CreateCaseRequest{
		CategoryID:      categoryID,
		RequestedAmount: json.Number(data.Total().StringFixed(2)),
		Purpose:         purpose,
		DepartmentID:    data.Department,
		FundingType:     caseapi.FundingOperating,
	}
}

// SaveAndGenerate registers the draft as a case, submits it, writes the
// issued number back into the draft and generates the PDF with it.
func (s *DocumentService) SaveAndGenerate(ctx context.Context, token string, draftID uuid.UUID, categoryID string) (*SubmitResult, error) {
	if s.Cases == nil {
		return nil, ErrCaseAPIDisabled
	}
	d, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithDraftID(ctx, draftID.String())

	snap := d.Snapshot()
	created, err := s.Cases.CreateCase(ctx, token, CasePayload(snap, categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	submitted, err := s.Cases.SubmitCase(ctx, token, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to submit case: %w", err)
	}

	docNo := submitted.DocNo
	if docNo == "" {
		docNo = created.CaseNo
	}
	d.SetDocNo(docNo)

	logger.Enrich(ctx, s.logger).Info("case submitted",
		zap.String("case_id", created.ID),
		zap.String("doc_no", docNo))

	art, err := s.GenerateArtifact(ctx, d.Snapshot())
	if err != nil {
		return nil, err
	}
	return &SubmitResult{CaseID: created.ID, CaseNo: created.CaseNo, DocNo: docNo, Artifact: art}, nil
}

// PullDocument finds a submitted document by number and appends its items
// to the draft. Blank items in the draft are dropped first.
func (s *DocumentService) PullDocument(ctx context.Context, token string, draftID uuid.UUID, docNo string) (*PullResult, error) {
	if s.Cases == nil {
		return nil, ErrCaseAPIDisabled
	}
	docNo = strings.TrimSpace(docNo)
	if docNo == "" {
		return nil, ErrDocumentNotFound
	}
	d, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	hits, err := s.Cases.SearchDocuments(ctx, token, docNo)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	doc, ok := pickDocument(hits, docNo)
	if !ok {
		return nil, ErrDocumentNotFound
	}

	items := PulledItems(doc)
	d.AppendPulled(items)
	return &PullResult{Source: doc.Number(), Added: len(items), Document: d.Snapshot()}, nil
}

// pickDocument prefers an exact number match over the first hit
func pickDocument(hits []caseapi.Document, docNo string) (caseapi.Document, bool) {
	for _, h := range hits {
		if h.DocNo == docNo || h.CaseNo == docNo {
			return h, true
		}
	}
	if len(hits) > 0 {
		return hits[0], true
	}
	return caseapi.Document{}, false
}

// PulledItems maps a searched document's lines to line items referencing it
func PulledItems(doc caseapi.Document) []voucher.LineItem {
	ref := doc.Number()
	out := make([]voucher.LineItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		desc := it.Description
		if desc == "" {
			desc = it.Purpose
		}
		unit := it.Unit
		if unit == "" {
			unit = PulledUnit
		}
		out = append(out, voucher.LineItem{
			Description: desc,
			Quantity:    firstAmount(it.Quantity, voucher.NewAmount("1")),
			Unit:        unit,
			Price:       firstAmount(it.Price, it.Amount, voucher.NewAmount("0")),
			RefNo:       ref,
		})
	}
	return out
}

// firstAmount returns the first value that is neither blank nor zero
func firstAmount(vals ...voucher.Amount) voucher.Amount {
	for _, v := range vals[:len(vals)-1] {
		if !v.IsBlank() && strings.TrimSpace(v.String()) != "0" {
			return v
		}
	}
	return vals[len(vals)-1]
}
