package handler

import (
	"github.com/gin-gonic/gin"

	tpmapp "github.com/unicef/etools-sub003/internal/application/tpm"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// TPMVisitHandler exposes the third-party monitoring visit endpoints.
type TPMVisitHandler struct {
	BaseHandler
	service *tpmapp.Service
	matrix  *permission.Matrix
}

// NewTPMVisitHandler creates a new TPMVisitHandler
func NewTPMVisitHandler(service *tpmapp.Service, matrix *permission.Matrix) *TPMVisitHandler {
	return &TPMVisitHandler{service: service, matrix: matrix}
}

// RegisterRoutes mounts the visit endpoints on the API group.
func (h *TPMVisitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/tpm/visits")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.POST("/:id/activities", h.AddActivity)
	group.POST("/:id/assign", h.action(tpm.ActionAssign))
	group.POST("/:id/accept", h.action(tpm.ActionAccept))
	group.POST("/:id/reject", h.action(tpm.ActionReject))
	group.POST("/:id/send_report", h.action(tpm.ActionSendReport))
	group.POST("/:id/reject_report", h.action(tpm.ActionRejectReport))
	group.POST("/:id/approve", h.action(tpm.ActionApprove))
	group.POST("/:id/cancel", h.action(tpm.ActionCancel))
}

// Create registers a new draft visit.
func (h *TPMVisitHandler) Create(c *gin.Context) {
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

	var req tpmapp.CreateVisitRequest
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

// List returns the tenant's visits matching the filter.
func (h *TPMVisitHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}

	var filter tpmapp.ListFilter
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

// GetByID returns one visit shaped to the actor's readable fields.
func (h *TPMVisitHandler) GetByID(c *gin.Context) {
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
		h.BadRequest(c, "invalid visit id")
		return
	}

	resp, roles, err := h.service.GetByID(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	shaped, err := filterFields(resp, h.matrix, identity.KindTPMVisit, resp.Status, roles)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shaped)
}

// AddActivity appends one activity to a draft or report-rejected visit.
func (h *TPMVisitHandler) AddActivity(c *gin.Context) {
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
		h.BadRequest(c, "invalid visit id")
		return
	}

	var req tpmapp.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.AddActivity(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// action builds the handler for one workflow transition endpoint.
func (h *TPMVisitHandler) action(name string) gin.HandlerFunc {
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
			h.BadRequest(c, "invalid visit id")
			return
		}

		var req tpmapp.ActionRequest
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
