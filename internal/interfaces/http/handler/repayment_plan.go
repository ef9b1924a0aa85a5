package handler

import (
	"time"

	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RepaymentPlanHandler handles debt repayment plan API endpoints
type RepaymentPlanHandler struct {
	BaseHandler
	planService *appbilling.RepaymentPlanService
}

// NewRepaymentPlanHandler creates a new RepaymentPlanHandler
func NewRepaymentPlanHandler(planService *appbilling.RepaymentPlanService) *RepaymentPlanHandler {
	return &RepaymentPlanHandler{planService: planService}
}

// UpsertPlanRequest represents a partial update of a plot's repayment plan.
// PeriodID scopes the plan to one billing period; omitted means the plan
// covers the plot's whole debt.
type UpsertPlanRequest struct {
	PeriodID  *string  `json:"period_id" binding:"omitempty,uuid"`
	TotalDebt *float64 `json:"total_debt" binding:"omitempty,min=0"`
	Deadline  *string  `json:"deadline"`
	Status    *string  `json:"status" binding:"omitempty,oneof=pending agreed in_progress completed cancelled"`
	Comment   *string  `json:"comment" binding:"omitempty,max=1000"`
}

// Upsert updates the plot's live plan or creates one
func (h *RepaymentPlanHandler) Upsert(c *gin.Context) {
	plotID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plot ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req UpsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	svcReq := appbilling.UpsertPlanRequest{}
	if req.TotalDebt != nil {
		debt := valueobject.NewMoneyFromFloat(*req.TotalDebt)
		svcReq.TotalDebt = &debt
	}
	if req.Deadline != nil {
		deadline, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			h.BadRequest(c, "deadline must be in YYYY-MM-DD format")
			return
		}
		svcReq.Deadline = &deadline
	}
	if req.Status != nil {
		status := billing.RepaymentPlanStatus(*req.Status)
		svcReq.Status = &status
	}
	svcReq.Comment = req.Comment

	var periodID *uuid.UUID
	if req.PeriodID != nil {
		id, ok := parseUUID(*req.PeriodID)
		if !ok {
			h.BadRequest(c, "Invalid period ID")
			return
		}
		periodID = &id
	}

	plan, err := h.planService.Upsert(c.Request.Context(), plotID, periodID, svcReq, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Get returns one repayment plan
func (h *RepaymentPlanHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plan ID")
		return
	}

	plan, err := h.planService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// ListByPlot returns the plan history of one plot
func (h *RepaymentPlanHandler) ListByPlot(c *gin.Context) {
	plotID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid plot ID")
		return
	}

	plans, err := h.planService.ListByPlot(c.Request.Context(), plotID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plans)
}

// List returns repayment plans with pagination
func (h *RepaymentPlanHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.planService.List(c.Request.Context(), listFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
