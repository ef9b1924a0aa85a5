package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// TariffSortFields contains allowed sort fields for tariffs
var TariffSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"name":        true,
	"type":        true,
	"active_from": true,
	"status":      true,
}

// PlotSortFields contains allowed sort fields for plots
var PlotSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"number":     true,
	"status":     true,
}

// PeriodSortFields contains allowed sort fields for billing periods
var PeriodSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"date_from":  true,
	"status":     true,
	"category":   true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"paid_at":    true,
	"amount":     true,
	"method":     true,
	"status":     true,
}

// PlanSortFields contains allowed sort fields for repayment plans
var PlanSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"deadline":   true,
	"status":     true,
}
