package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/interfaces/http/dto"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
)

const defaultGenerationLimit = 50

// GenerationHandler serves the history of generated PDFs
type GenerationHandler struct {
	BaseHandler
	service *document.DocumentService
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(service *document.DocumentService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

// List returns recent jobs, newest first
func (h *GenerationHandler) List(c *gin.Context) {
	q := ListGenerationsQuery{Limit: defaultGenerationLimit}
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	jobs, err := h.service.ListJobs(c.Request.Context(), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(jobs, len(jobs), q.Limit))
}

// Get returns one job
func (h *GenerationHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// Download sends the stored PDF of a completed job, or redirects to its
// presigned storage URL
func (h *GenerationHandler) Download(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	dl, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if dl.RedirectURL != "" {
		c.Redirect(http.StatusFound, dl.RedirectURL)
		return
	}
	defer dl.Body.Close()
	streamPDF(c, dl.Job.Filename, dl.Job.Size, dl.Body)
}
