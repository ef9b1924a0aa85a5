package handler

import (
	"time"

	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TariffHandler handles tariff and tariff override API endpoints
type TariffHandler struct {
	BaseHandler
	tariffService   *appbilling.TariffService
	overrideService *appbilling.TariffOverrideService
}

// NewTariffHandler creates a new TariffHandler
func NewTariffHandler(tariffService *appbilling.TariffService, overrideService *appbilling.TariffOverrideService) *TariffHandler {
	return &TariffHandler{
		tariffService:   tariffService,
		overrideService: overrideService,
	}
}

// CreateTariffRequest represents a request to create a tariff
type CreateTariffRequest struct {
	Name       string  `json:"name" binding:"required,min=1,max=200"`
	Type       string  `json:"type" binding:"required,oneof=member target electric"`
	Unit       string  `json:"unit" binding:"required,oneof=plot area"`
	Amount     float64 `json:"amount" binding:"min=0"`
	ActiveFrom string  `json:"active_from" binding:"required"`
	ActiveTo   *string `json:"active_to"`
}

// Create adds a tariff in draft status
func (h *TariffHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	activeFrom, err := time.Parse("2006-01-02", req.ActiveFrom)
	if err != nil {
		h.BadRequest(c, "active_from must be in YYYY-MM-DD format")
		return
	}
	var activeTo *time.Time
	if req.ActiveTo != nil {
		parsed, err := time.Parse("2006-01-02", *req.ActiveTo)
		if err != nil {
			h.BadRequest(c, "active_to must be in YYYY-MM-DD format")
			return
		}
		activeTo = &parsed
	}

	tariff, err := h.tariffService.Create(c.Request.Context(), appbilling.CreateTariffRequest{
		Name:       req.Name,
		Type:       billing.TariffType(req.Type),
		Unit:       billing.TariffUnit(req.Unit),
		Amount:     valueobject.NewMoneyFromFloat(req.Amount),
		ActiveFrom: activeFrom,
		ActiveTo:   activeTo,
	}, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tariff)
}

// SetStatusRequest represents a tariff status transition
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft active archived"`
}

// SetStatus moves a tariff between draft, active and archived
func (h *TariffHandler) SetStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tariff ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tariff, err := h.tariffService.SetStatus(c.Request.Context(), id, billing.TariffStatus(req.Status), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tariff)
}

// Get returns one tariff
func (h *TariffHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tariff ID")
		return
	}

	tariff, err := h.tariffService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tariff)
}

// List returns tariffs with pagination
func (h *TariffHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.tariffService.List(c.Request.Context(), listFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// CreateOverrideRequest represents a per-plot amount override
type CreateOverrideRequest struct {
	PlotID  string  `json:"plot_id" binding:"required,uuid"`
	Amount  float64 `json:"amount" binding:"min=0"`
	Comment string  `json:"comment" binding:"max=500"`
}

// CreateOverride attaches a per-plot override to the tariff
func (h *TariffHandler) CreateOverride(c *gin.Context) {
	tariffID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tariff ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	plotID, ok := parseUUID(req.PlotID)
	if !ok {
		h.BadRequest(c, "Invalid plot ID")
		return
	}

	override, err := h.overrideService.Create(c.Request.Context(), appbilling.CreateOverrideRequest{
		TariffID: tariffID,
		PlotID:   plotID,
		Amount:   valueobject.NewMoneyFromFloat(req.Amount),
		Comment:  req.Comment,
	}, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, override)
}

// ListOverrides returns all overrides of one tariff
func (h *TariffHandler) ListOverrides(c *gin.Context) {
	tariffID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tariff ID")
		return
	}

	overrides, err := h.overrideService.ListByTariff(c.Request.Context(), tariffID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overrides)
}

// DeleteOverride removes an override
func (h *TariffHandler) DeleteOverride(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid override ID")
		return
	}
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	if err := h.overrideService.Delete(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
