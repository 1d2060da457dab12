package handler

import (
	"github.com/gin-gonic/gin"

	engagementapp "github.com/unicef/etools-sub003/internal/application/engagement"
	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
)

// EngagementHandler exposes the financial assurance workflow endpoints.
type EngagementHandler struct {
	BaseHandler
	service *engagementapp.Service
	matrix  *permission.Matrix
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(service *engagementapp.Service, matrix *permission.Matrix) *EngagementHandler {
	return &EngagementHandler{service: service, matrix: matrix}
}

// RegisterRoutes mounts the engagement endpoints on the API group.
func (h *EngagementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/engagements")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.GetByID)
	group.PATCH("/:id", h.Patch)
	group.POST("/:id/submit", h.action(engagement.ActionSubmit))
	group.POST("/:id/send_back", h.action(engagement.ActionSendBack))
	group.POST("/:id/cancel", h.action(engagement.ActionCancel))
	group.POST("/:id/finalize", h.action(engagement.ActionFinalize))
}

// Create registers a new engagement in status partner_contacted.
func (h *EngagementHandler) Create(c *gin.Context) {
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

	var req engagementapp.CreateEngagementRequest
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

// List returns the tenant's engagements matching the filter.
func (h *EngagementHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}

	var filter engagementapp.ListFilter
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

// GetByID returns one engagement shaped to the actor's readable fields.
func (h *EngagementHandler) GetByID(c *gin.Context) {
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
		h.BadRequest(c, "invalid engagement id")
		return
	}

	resp, roles, err := h.service.GetByID(c.Request.Context(), tenantID, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	shaped, err := filterFields(resp, h.matrix, identity.KindEngagement, resp.Status, roles)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shaped)
}

// Patch applies writable-field updates under matrix write checks.
func (h *EngagementHandler) Patch(c *gin.Context) {
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
		h.BadRequest(c, "invalid engagement id")
		return
	}

	var req engagementapp.PatchEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Patch(c.Request.Context(), tenantID, id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// action builds the handler for one workflow transition endpoint.
func (h *EngagementHandler) action(name string) gin.HandlerFunc {
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
			h.BadRequest(c, "invalid engagement id")
			return
		}

		var req engagementapp.ActionRequest
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
