package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
)

// DraftHandler serves editing sessions
type DraftHandler struct {
	BaseHandler
	service *document.DocumentService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(service *document.DocumentService) *DraftHandler {
	return &DraftHandler{service: service}
}

// Create opens a draft. The body is an optional document; without one an
// empty document of ?type= (default pv) is started.
func (h *DraftHandler) Create(c *gin.Context) {
	t := voucher.DocType(c.DefaultQuery("type", string(voucher.DocTypePaymentVoucher)))

	var data *voucher.DocumentData
	var body voucher.DocumentData
	switch err := c.ShouldBindJSON(&body); {
	case err == nil:
		if body.Type == "" {
			body.Type = t
		}
		data = &body
	case errors.Is(err, io.EOF):
	default:
		h.InvalidJSON(c, err)
		return
	}

	id, snap, err := h.service.CreateDraft(c.Request.Context(), t, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDraftResponse(id.String(), snap))
}

// Get returns the draft content
func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.service.GetDraft(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDraftResponse(id.String(), snap))
}

// Update sets header fields
func (h *DraftHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var patch voucher.DocumentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	snap, err := h.service.UpdateDraft(c.Request.Context(), id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDraftResponse(id.String(), snap))
}

// Delete ends the session
func (h *DraftHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteDraft(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem appends an empty line item
func (h *DraftHandler) AddItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.service.AddItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ReplaceItems swaps the whole item list
func (h *DraftHandler) ReplaceItems(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	snap, err := h.service.ReplaceItems(c.Request.Context(), id, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDraftResponse(id.String(), snap))
}

// UpdateItem edits one line item
func (h *DraftHandler) UpdateItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var patch voucher.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	item, err := h.service.UpdateItem(c.Request.Context(), id, c.Param("itemId"), patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// RemoveItem deletes one line item. The last item cannot be removed.
func (h *DraftHandler) RemoveItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.service.RemoveItem(c.Request.Context(), id, c.Param("itemId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDraftResponse(id.String(), snap))
}

// Pull appends the items of a submitted document
func (h *DraftHandler) Pull(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	res, err := h.service.PullDocument(c.Request.Context(), bearerToken(c), id, req.DocNo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PullResponse{Source: res.Source, Added: res.Added, Draft: toDraftResponse(id.String(), res.Document)})
}

// GeneratePDF generates a PDF from the draft as it is now
func (h *DraftHandler) GeneratePDF(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	art, err := h.service.GenerateDraft(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePDF(c, art)
}

// Submit registers the draft as a case and returns the PDF carrying the
// issued number
func (h *DraftHandler) Submit(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.bindError(c, err)
		return
	}
	res, err := h.service.SaveAndGenerate(c.Request.Context(), bearerToken(c), id, req.CategoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("X-Doc-No", res.DocNo)
	c.Header("X-Case-ID", res.CaseID)
	writePDF(c, res.Artifact)
}

// bindError answers a bind failure with field details when validation
// rejected the body, or as invalid JSON otherwise
func (h *DraftHandler) bindError(c *gin.Context, err error) {
	if isValidationError(err) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.InvalidJSON(c, err)
}
