package handler

import (
	"github.com/gin-gonic/gin"

	pseaapp "github.com/unicef/etools-sub003/internal/application/psea"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
	"github.com/unicef/etools-sub003/internal/domain/psea"
)

// PSEAHandler exposes the PSEA capacity assessment endpoints.
type PSEAHandler struct {
	BaseHandler
	service *pseaapp.Service
	matrix  *permission.Matrix
}

// NewPSEAHandler creates a new PSEAHandler
func NewPSEAHandler(service *pseaapp.Service, matrix *permission.Matrix) *PSEAHandler {
	return &PSEAHandler{service: service, matrix: matrix}
}

// RegisterRoutes mounts the assessment endpoints on the API group.
func (h *PSEAHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/psea/assessments")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.PUT("/:id/assessor", h.SetAssessor)
	group.POST("/:id/answers", h.RecordAnswer)
	group.POST("/:id/assign", h.action(psea.ActionAssign))
	group.POST("/:id/submit", h.action(psea.ActionSubmit))
	group.POST("/:id/reject", h.action(psea.ActionReject))
	group.POST("/:id/finalize", h.action(psea.ActionFinalize))
	group.POST("/:id/cancel", h.action(psea.ActionCancel))
}

// Create registers a new draft assessment.
func (h *PSEAHandler) Create(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}

	var req pseaapp.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the tenant's assessments matching the filter.
func (h *PSEAHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}

	var filter pseaapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	responses, total, err := h.service.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// GetByID returns one assessment shaped to the actor's readable fields.
func (h *PSEAHandler) GetByID(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid assessment id")
		return
	}

	resp, roles, err := h.service.GetByID(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	shaped, err := filterFields(resp, h.matrix, identity.KindPSEA, resp.Status, roles)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shaped)
}

// SetAssessor designates the assessor while the assessment is a draft.
func (h *PSEAHandler) SetAssessor(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid assessment id")
		return
	}

	var req pseaapp.AssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.SetAssessor(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordAnswer stores one indicator answer. The first answer moves an
// assigned assessment to in_progress.
func (h *PSEAHandler) RecordAnswer(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid assessment id")
		return
	}

	var req pseaapp.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.RecordAnswer(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// action builds the handler for one workflow transition endpoint.
func (h *PSEAHandler) action(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := getTenantID(c)
		if !ok {
			h.Unauthorized(c, "missing tenant scope")
			return
		}
		actor, ok := getActor(c)
		if !ok {
			h.Unauthorized(c, "missing actor")
			return
		}
		id, err := parseID(c)
		if err != nil {
			h.BadRequest(c, "invalid assessment id")
			return
		}

		var req pseaapp.ActionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				h.BindError(c, err)
				return
			}
		}

		resp, err := h.service.ExecuteAction(c.Request.Context(), tenantID, id, actor, name, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, resp)
	}
}
