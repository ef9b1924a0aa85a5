package handler

import (
	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// AccrualHandler handles accrual generation API endpoints
type AccrualHandler struct {
	BaseHandler
	accrualService *appbilling.AccrualService
}

// NewAccrualHandler creates a new AccrualHandler
func NewAccrualHandler(accrualService *appbilling.AccrualService) *AccrualHandler {
	return &AccrualHandler{accrualService: accrualService}
}

// GenerateRequest represents a request to (re)generate period accruals
type GenerateRequest struct {
	Force bool     `json:"force"`
	Types []string `json:"types" binding:"omitempty,dive,oneof=membership target"`
}

// Generate computes accrual lines for every active plot in the period
func (h *AccrualHandler) Generate(c *gin.Context) {
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	types := make([]billing.ChargeType, len(req.Types))
	for i, t := range req.Types {
		types[i] = billing.ChargeType(t)
	}

	result, err := h.accrualService.Generate(c.Request.Context(), periodID, appbilling.GenerateOptions{
		Force: req.Force,
		Types: types,
	}, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List returns all accrual lines of a period
func (h *AccrualHandler) List(c *gin.Context) {
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	accruals, err := h.accrualService.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accruals)
}

// UpsertElectricRequest represents a meter-driven electric accrual
type UpsertElectricRequest struct {
	PlotID string  `json:"plot_id" binding:"required,uuid"`
	Amount float64 `json:"amount" binding:"min=0"`
}

// UpsertElectric creates or replaces the electric accrual line for one plot
func (h *AccrualHandler) UpsertElectric(c *gin.Context) {
	periodID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req UpsertElectricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	plotID, ok := parseUUID(req.PlotID)
	if !ok {
		h.BadRequest(c, "Invalid plot ID")
		return
	}

	accrual, err := h.accrualService.UpsertElectricAccrual(
		c.Request.Context(), periodID, plotID, valueobject.NewMoneyFromFloat(req.Amount), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accrual)
}
