package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lastmileapp "github.com/unicef/etools-sub003/internal/application/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// LastMileHandler exposes the last-mile inventory endpoints. Transfer
// listings and movements are always scoped to one partner and location.
type LastMileHandler struct {
	BaseHandler
	service *lastmileapp.Service
}

// NewLastMileHandler creates a new LastMileHandler
func NewLastMileHandler(service *lastmileapp.Service) *LastMileHandler {
	return &LastMileHandler{service: service}
}

// RegisterRoutes mounts the inventory endpoints on the API group.
func (h *LastMileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/lastmile")
	group.GET("/partners/:partner_id/points", h.ListPoints)
	group.GET("/partners/:partner_id/points/:poi_id/transfers", h.ListTransfers)
	group.POST("/points", h.CreatePoint)
	group.DELETE("/points/:id", h.DeactivatePoint)
	group.POST("/points/:id/transfers/:transfer_id/check_in", h.CheckIn)
	group.POST("/points/:id/check_out", h.CheckOut)
	group.POST("/transfers/:id/reverse", h.Reverse)
	group.POST("/transfers/:id/evidence", h.UploadEvidence)
	group.PATCH("/items/:id", h.UpdateItem)
	group.PATCH("/items/:id/split", h.SplitItem)
	group.POST("/review", h.BulkReview)
}

type listPointsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Status   string `form:"approval_status"`
}

// ListPoints lists the locations visible to a partner.
func (h *LastMileHandler) ListPoints(c *gin.Context) {
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
	partnerID, err := uuid.Parse(c.Param("partner_id"))
	if err != nil {
		h.BadRequest(c, "invalid partner id")
		return
	}

	var req listPointsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Sort:     shared.ParseSort(req.Sort),
		Filters:  map[string]any{},
	}
	if req.Status != "" {
		filter.Filters["approval_status"] = req.Status
	}

	points, err := h.service.ListPointsOfInterest(c.Request.Context(), tenantID, actor, partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// ListTransfers lists a location's transfers for one direction.
func (h *LastMileHandler) ListTransfers(c *gin.Context) {
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
	partnerID, err := uuid.Parse(c.Param("partner_id"))
	if err != nil {
		h.BadRequest(c, "invalid partner id")
		return
	}
	poiID, err := uuid.Parse(c.Param("poi_id"))
	if err != nil {
		h.BadRequest(c, "invalid point of interest id")
		return
	}

	var filter lastmileapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	transfers, err := h.service.ListTransfers(c.Request.Context(), tenantID, actor, poiID, partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}

// CreatePoint registers a new location pending review.
func (h *LastMileHandler) CreatePoint(c *gin.Context) {
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

	var req lastmileapp.CreatePointOfInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CreatePointOfInterest(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DeactivatePoint retires a location that holds no stock.
func (h *LastMileHandler) DeactivatePoint(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid point of interest id")
		return
	}

	if err := h.service.DeactivatePointOfInterest(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CheckIn reconciles an incoming transfer at a location.
func (h *LastMileHandler) CheckIn(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	poiID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid point of interest id")
		return
	}
	transferID, err := uuid.Parse(c.Param("transfer_id"))
	if err != nil {
		h.BadRequest(c, "invalid transfer id")
		return
	}

	var req lastmileapp.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), actor, poiID, transferID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CheckOut creates an outgoing transfer from stocked items.
func (h *LastMileHandler) CheckOut(c *gin.Context) {
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
	poiID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid point of interest id")
		return
	}

	var req lastmileapp.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CheckOut(c.Request.Context(), tenantID, actor, poiID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Reverse builds the reversing transfer for a completed movement. Repeated
// calls return the reversal already recorded in the history.
func (h *LastMileHandler) Reverse(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid transfer id")
		return
	}

	resp, err := h.service.ReverseTransfer(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadEvidence attaches proof to a wastage transfer after the fact.
func (h *LastMileHandler) UploadEvidence(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid transfer id")
		return
	}

	var req lastmileapp.UploadEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.service.UploadEvidence(c.Request.Context(), actor, id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateItem patches an item's writable fields, including a unit change.
func (h *LastMileHandler) UpdateItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid item id")
		return
	}

	var req lastmileapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.UpdateItem(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SplitItem divides one item into sibling lines on its transfer.
func (h *LastMileHandler) SplitItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid item id")
		return
	}

	var req lastmileapp.SplitItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.SplitItem(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BulkReview approves or rejects pending locations or transfer items.
func (h *LastMileHandler) BulkReview(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "missing actor")
		return
	}

	var req lastmileapp.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.service.BulkReview(c.Request.Context(), actor, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
