package handler

import (
	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment import API endpoints
type PaymentHandler struct {
	BaseHandler
	importService *appbilling.PaymentImportService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(importService *appbilling.PaymentImportService) *PaymentHandler {
	return &PaymentHandler{importService: importService}
}

// ImportRequest represents a batch of payment rows to import
type ImportRequest struct {
	Source   string                         `json:"source" binding:"required,oneof=bank_csv cash_desk manual"`
	FileName string                         `json:"file_name" binding:"max=255"`
	Rows     []appbilling.PaymentImportRow  `json:"rows" binding:"required"`
}

// Import accepts payment rows, deduplicates them and allocates each
// accepted payment to the plot's open accruals oldest first
func (h *PaymentHandler) Import(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Missing actor identity")
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.importService.ImportPayments(c.Request.Context(), req.Rows, appbilling.ImportMeta{
		Source:   req.Source,
		FileName: req.FileName,
		ActorID:  actorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
