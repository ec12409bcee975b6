package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolfin/voucher/internal/application/document"
	"github.com/schoolfin/voucher/internal/domain/voucher"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
)

// DocumentHandler serves variant metadata, previews and one-shot PDFs
type DocumentHandler struct {
	BaseHandler
	service *document.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service *document.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// ListDocTypes returns the six variants
func (h *DocumentHandler) ListDocTypes(c *gin.Context) {
	h.Success(c, h.service.DocTypes())
}

// GetLayout returns the layout descriptor of one variant
func (h *DocumentHandler) GetLayout(c *gin.Context) {
	layout, err := h.service.Layout(voucher.DocType(c.Param("type")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, layout)
}

// NewDocument returns an empty document of ?type= dated today
func (h *DocumentHandler) NewDocument(c *gin.Context) {
	var q DocTypeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	data, err := h.service.NewDocument(voucher.DocType(q.Type))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Preview renders the on-screen preview of the posted document
func (h *DocumentHandler) Preview(c *gin.Context) {
	data, ok := h.bindDocument(c)
	if !ok {
		return
	}
	res, err := h.service.Preview(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPreviewResponse(res))
}

// GeneratePDF renders the posted document to a PDF download
func (h *DocumentHandler) GeneratePDF(c *gin.Context) {
	data, ok := h.bindDocument(c)
	if !ok {
		return
	}
	art, err := h.service.GenerateArtifact(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePDF(c, art)
}

func (h *DocumentHandler) bindDocument(c *gin.Context) (*voucher.DocumentData, bool) {
	var data voucher.DocumentData
	if err := c.ShouldBindJSON(&data); err != nil {
		h.InvalidJSON(c, err)
		return nil, false
	}
	return &data, true
}

// writePDF sends an artifact as an attachment
func writePDF(c *gin.Context, art *document.Artifact) {
	c.Header("Content-Disposition", contentDisposition(art.Filename))
	if art.JobID != uuid.Nil {
		c.Header("X-Generation-ID", art.JobID.String())
	}
	if art.CacheHit {
		c.Header(logger.CacheHeader, "HIT")
	} else {
		c.Header(logger.CacheHeader, "MISS")
	}
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// contentDisposition quotes or RFC 2231-encodes the filename as needed
func contentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// streamPDF copies a stored PDF to the client. A size of zero means
// unknown.
func streamPDF(c *gin.Context, filename string, size int64, body io.Reader) {
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, document.PDFContentType, body, map[string]string{
		"Content-Disposition": contentDisposition(filename),
	})
}
