package billing

import (
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlotStatus represents the registry status of a plot
type PlotStatus string

const (
	PlotStatusActive   PlotStatus = "active"
	PlotStatusArchived PlotStatus = "archived"
)

// Plot is a billable garden lot. The plot registry is owned by an external
// module; the billing core treats plots as a read-only projection.
type Plot struct {
	shared.BaseEntity
	Number string           `json:"number"`
	Area   *decimal.Decimal `json:"area"` // nil when the registry has no survey data
	Status PlotStatus       `json:"status"`
}

// IsActive reports whether the plot is billable
func (p *Plot) IsActive() bool {
	return p.Status == PlotStatusActive
}
