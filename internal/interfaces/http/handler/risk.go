package handler

import (
	"github.com/gin-gonic/gin"

	riskapp "github.com/unicef/etools-sub003/internal/application/risk"
)

// RiskHandler exposes the hierarchical risk questionnaire endpoints. Trees
// are addressed by engagement and catalog code.
type RiskHandler struct {
	BaseHandler
	service *riskapp.Service
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(service *riskapp.Service) *RiskHandler {
	return &RiskHandler{service: service}
}

// RegisterRoutes mounts the questionnaire endpoints on the API group.
func (h *RiskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/engagements/:id/risks")
	group.GET("/:code", h.GetTree)
	group.PUT("/:code", h.SaveAnswers)
	group.GET("/:code/completeness", h.Completeness)
}

type saveAnswersRequest struct {
	Tree []riskapp.TreeWriteNode `json:"tree" binding:"required"`
}

// GetTree returns the questionnaire tree with answers and aggregates.
func (h *RiskHandler) GetTree(c *gin.Context) {
	engagementID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid engagement id")
		return
	}

	tree, err := h.service.GetTree(c.Request.Context(), engagementID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// SaveAnswers merges a partial write tree and returns the recomputed tree.
func (h *RiskHandler) SaveAnswers(c *gin.Context) {
	engagementID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid engagement id")
		return
	}

	var req saveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tree, err := h.service.SaveAnswers(c.Request.Context(), engagementID, c.Param("code"), req.Tree)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}

// Completeness reports whether every applicable question is answered.
func (h *RiskHandler) Completeness(c *gin.Context) {
	engagementID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "invalid engagement id")
		return
	}

	complete, err := h.service.Complete(c.Request.Context(), engagementID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"complete": complete})
}
