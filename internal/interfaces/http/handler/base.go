package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/interfaces/http/dto"
	"github.com/unicef/etools-sub003/internal/interfaces/http/middleware"
)

// kindHTTPStatus maps domain error kinds to HTTP status codes.
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindNotFound:               http.StatusNotFound,
	shared.KindPermissionDenied:       http.StatusForbidden,
	shared.KindPreconditionFailed:     http.StatusBadRequest,
	shared.KindValidation:             http.StatusBadRequest,
	shared.KindConflict:               http.StatusConflict,
	shared.KindIntegrationUnavailable: http.StatusServiceUnavailable,
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getActor extracts the authenticated actor from the request context.
func getActor(c *gin.Context) (identity.Actor, bool) {
	return middleware.GetActor(c)
}

// getTenantID extracts the tenant scope from the request context.
func getTenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantID(c)
}

// parseID parses the :id path parameter.
func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse("bad_request", message))
}

// BindError sends a 400 response for a failed request binding, with
// per-field details when the failure came from validation rules.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	resp := dto.NewErrorResponse("bad_request", "request validation failed")
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		resp.Error.Details = details
	} else {
		resp.Error.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", message))
}

// HandleError converts a domain error into its HTTP response. Errors that
// are not DomainError render as 500 without leaking internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status, ok := kindHTTPStatus[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		resp := dto.NewErrorResponse(domainErr.Code, domainErr.Message)
		resp.Error.Field = domainErr.Field
		c.JSON(status, resp)
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal", "an unexpected error occurred"))
}
