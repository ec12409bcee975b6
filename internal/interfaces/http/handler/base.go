// Package handler implements the REST endpoints of the voucher service.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/domain/shared"
	"github.com/schoolfin/voucher/internal/infrastructure/caseapi"
	"github.com/schoolfin/voucher/internal/infrastructure/logger"
	"github.com/schoolfin/voucher/internal/infrastructure/printing"
	"github.com/schoolfin/voucher/internal/interfaces/http/dto"
	"github.com/schoolfin/voucher/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.Set(middleware.ErrorCodeKey, dto.NormalizeErrorCode(code))
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InvalidJSON sends a 400 response for an unparseable body
func (h *BaseHandler) InvalidJSON(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// HandleError converts service errors to HTTP responses. Server-side
// failures are logged with the request logger.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code, message := classify(err)
	code = dto.NormalizeErrorCode(code)
	status := dto.GetHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed",
			zap.String("error_code", code),
			zap.Error(err))
	}
	h.Error(c, status, code, message)
}

func classify(err error) (code, message string) {
	var (
		renderErr *printing.RenderError
		caseErr   *caseapi.CaseAPIError
		domainErr *shared.DomainError
		maxBytes  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &renderErr):
		return renderErr.Code, renderErr.Message
	case errors.As(err, &caseErr):
		return dto.ErrCodeCaseAPI, "Case backend rejected the request: " + caseErr.Message
	case errors.Is(err, caseapi.ErrUnavailable):
		return dto.ErrCodeCaseAPIUnavailable, "Case backend is unreachable"
	case errors.As(err, &domainErr):
		return domainErr.Code, domainErr.Message
	case errors.As(err, &maxBytes):
		return dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"
	case errors.Is(err, context.DeadlineExceeded):
		return dto.ErrCodeTimeout, "The request took too long"
	default:
		return dto.ErrCodeInternal, "An unexpected error occurred"
	}
}

// uuidParam parses a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bearerToken returns the caller's token for the case backend, if any
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func isValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
