package handler

import (
	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// ReconciliationHandler handles reconciliation statement API endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *appbilling.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService *appbilling.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// ReconciliationRequest represents reconciliation query parameters
type ReconciliationRequest struct {
	OnlyWithDebt bool   `form:"only_with_debt"`
	Sort         string `form:"sort" binding:"omitempty,oneof=plot debt_asc debt_desc"`
}

// ForPeriod builds the per-plot balance statement of one period
func (h *ReconciliationHandler) ForPeriod(c *gin.Context) {
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	var req ReconciliationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.reconciliationService.BuildPeriodReconciliation(c.Request.Context(), periodID, appbilling.ReconciliationQuery{
		OnlyWithDebt: req.OnlyWithDebt,
		Sort:         req.Sort,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}

// ForPlot builds the full balance statement of one plot across all periods
func (h *ReconciliationHandler) ForPlot(c *gin.Context) {
	plotID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plot ID")
		return
	}

	statement, err := h.reconciliationService.BuildPlotStatement(c.Request.Context(), plotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}
