package handler

import (
	"context"
	"time"

	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingPeriodHandler handles billing period API endpoints
type BillingPeriodHandler struct {
	BaseHandler
	periodService *appbilling.PeriodService
}

// NewBillingPeriodHandler creates a new BillingPeriodHandler
func NewBillingPeriodHandler(periodService *appbilling.PeriodService) *BillingPeriodHandler {
	return &BillingPeriodHandler{periodService: periodService}
}

// CreatePeriodRequest represents a request to open a new billing period
type CreatePeriodRequest struct {
	DateFrom string `json:"date_from" binding:"required"`
	DateTo   string `json:"date_to" binding:"required"`
	Category string `json:"category" binding:"omitempty,oneof=general electric"`
}

// Create opens a new draft billing period
func (h *BillingPeriodHandler) Create(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dateFrom, err := time.Parse("2006-01-02", req.DateFrom)
	if err != nil {
		h.BadRequest(c, "date_from must be in YYYY-MM-DD format")
		return
	}
	dateTo, err := time.Parse("2006-01-02", req.DateTo)
	if err != nil {
		h.BadRequest(c, "date_to must be in YYYY-MM-DD format")
		return
	}

	category := billing.PeriodCategoryGeneral
	if req.Category != "" {
		category = billing.PeriodCategory(req.Category)
	}

	period, err := h.periodService.Create(c.Request.Context(), appbilling.CreatePeriodRequest{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Category: category,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, period)
}

// Get returns one billing period
func (h *BillingPeriodHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	period, err := h.periodService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// List returns billing periods with pagination
func (h *BillingPeriodHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.periodService.List(c.Request.Context(), listFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Lock freezes the period ledger
func (h *BillingPeriodHandler) Lock(c *gin.Context) {
	h.transition(c, h.periodService.Lock)
}

// Unlock reopens a locked period for regeneration
func (h *BillingPeriodHandler) Unlock(c *gin.Context) {
	h.transition(c, h.periodService.Unlock)
}

func (h *BillingPeriodHandler) transition(c *gin.Context, fn func(ctx context.Context, periodID, actorID uuid.UUID) (*billing.BillingPeriod, error)) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid period ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	period, err := fn(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}
