package handler

import (
	"github.com/gin-gonic/gin"

	integrationapp "github.com/unicef/etools-sub003/internal/application/integration"
)

// IntegrationHandler exposes the ERP synchronization endpoints.
type IntegrationHandler struct {
	BaseHandler
	service *integrationapp.Service
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(service *integrationapp.Service) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

// RegisterRoutes mounts the ERP endpoints on the API group.
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/erp")
	group.POST("/purchase_orders/:number/sync", h.SyncPurchaseOrder)
	group.POST("/tpm_partners/:vendor/sync", h.SyncTPMPartner)
	group.PUT("/firms/:id/staff", h.RealignFirmStaff)
	group.POST("/warehouses/:id/waybill", h.UploadWaybill)
}

// SyncPurchaseOrder pulls one purchase order from the ERP and upserts it
// together with its auditor firm.
func (h *IntegrationHandler) SyncPurchaseOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}

	resp, err := h.service.SyncPurchaseOrder(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SyncTPMPartner pulls one TPM partner from the ERP by vendor number.
func (h *IntegrationHandler) SyncTPMPartner(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}

	resp, err := h.service.SyncTPMPartner(c.Request.Context(), tenantID, c.Param("vendor"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RealignFirmStaff replaces the active staff set of an auditor firm.
func (h *IntegrationHandler) RealignFirmStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.Unauthorized(c, "missing tenant scope")
		return
	}
	firmID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid organization id")
		return
	}

	var req integrationapp.RealignFirmStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.RealignFirmStaff(c.Request.Context(), tenantID, firmID, req.UserIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadWaybill registers an uploaded waybill for a warehouse and notifies
// the country-office administrators.
func (h *IntegrationHandler) UploadWaybill(c *gin.Context) {
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
	warehouseID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid warehouse id")
		return
	}

	var req integrationapp.UploadWaybillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.service.UploadWaybill(c.Request.Context(), tenantID, actor, warehouseID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
