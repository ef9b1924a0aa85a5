package billing

import (
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TariffType categorizes what a tariff charges for
type TariffType string

const (
	TariffTypeMember   TariffType = "member"   // Regular membership dues
	TariffTypeTarget   TariffType = "target"   // One-off target contributions (road, well, power line)
	TariffTypeElectric TariffType = "electric" // Electricity rate per kWh, consumed by meter-driven accruals
)

// IsValid checks if the tariff type is valid
func (t TariffType) IsValid() bool {
	switch t {
	case TariffTypeMember, TariffTypeTarget, TariffTypeElectric:
		return true
	}
	return false
}

// String returns the string representation
func (t TariffType) String() string {
	return string(t)
}

// ChargeType returns the accrual charge type this tariff produces
func (t TariffType) ChargeType() ChargeType {
	switch t {
	case TariffTypeMember:
		return ChargeTypeMembership
	case TariffTypeTarget:
		return ChargeTypeTarget
	default:
		return ChargeTypeElectric
	}
}

// TariffUnit defines how a tariff amount is applied to a plot
type TariffUnit string

const (
	TariffUnitPlot TariffUnit = "plot" // Flat amount per plot
	TariffUnitArea TariffUnit = "area" // Amount per unit of plot area
)

// IsValid checks if the tariff unit is valid
func (u TariffUnit) IsValid() bool {
	return u == TariffUnitPlot || u == TariffUnitArea
}

// TariffStatus represents the publication status of a tariff
type TariffStatus string

const (
	TariffStatusDraft    TariffStatus = "draft"    // Not yet approved, excluded from generation
	TariffStatusActive   TariffStatus = "active"   // Approved, selectable by date range
	TariffStatusArchived TariffStatus = "archived" // Retired
)

// IsValid checks if the tariff status is valid
func (s TariffStatus) IsValid() bool {
	switch s {
	case TariffStatusDraft, TariffStatusActive, TariffStatusArchived:
		return true
	}
	return false
}

// Tariff is a named charge rule owned by the finance-config module.
// The billing core reads tariffs and never mutates them.
type Tariff struct {
	shared.BaseAggregateRoot
	Name       string            `json:"name"`
	Type       TariffType        `json:"type"`
	Unit       TariffUnit        `json:"unit"`
	Amount     valueobject.Money `json:"amount"`
	ActiveFrom time.Time         `json:"active_from"`
	ActiveTo   *time.Time        `json:"active_to"` // nil = open-ended
	Status     TariffStatus      `json:"status"`
}

// NewTariff creates a new tariff in draft status
func NewTariff(name string, tariffType TariffType, unit TariffUnit, amount valueobject.Money, activeFrom time.Time, activeTo *time.Time) (*Tariff, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TARIFF_NAME", "Tariff name cannot be empty")
	}
	if !tariffType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARIFF_TYPE", "Tariff type is not valid")
	}
	if !unit.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARIFF_UNIT", "Tariff unit is not valid")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tariff amount must be positive")
	}
	if activeTo != nil && !activeTo.After(activeFrom) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "Tariff active range must end after it starts")
	}

	return &Tariff{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              tariffType,
		Unit:              unit,
		Amount:            amount,
		ActiveFrom:        activeFrom,
		ActiveTo:          activeTo,
		Status:            TariffStatusDraft,
	}, nil
}

// IsActiveAt reports whether the tariff applies on the given date.
// Draft and archived tariffs are never active.
func (t *Tariff) IsActiveAt(date time.Time) bool {
	if t.Status != TariffStatusActive {
		return false
	}
	if date.Before(t.ActiveFrom) {
		return false
	}
	if t.ActiveTo != nil && date.After(*t.ActiveTo) {
		return false
	}
	return true
}

// TariffOverride is a per-plot exception to a tariff's computed amount.
// Overrides are immutable: staff replace them by delete + create.
type TariffOverride struct {
	shared.BaseEntity
	TariffID  uuid.UUID         `json:"tariff_id"`
	PlotID    uuid.UUID         `json:"plot_id"`
	Amount    valueobject.Money `json:"amount"`
	Comment   string            `json:"comment"`
	CreatedBy uuid.UUID         `json:"created_by"`
}

// NewTariffOverride creates a new tariff override
func NewTariffOverride(tariffID, plotID uuid.UUID, amount valueobject.Money, comment string, createdBy uuid.UUID) (*TariffOverride, error) {
	if tariffID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARIFF", "Tariff ID cannot be empty")
	}
	if plotID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PLOT", "Plot ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Override amount cannot be negative")
	}

	return &TariffOverride{
		BaseEntity: shared.NewBaseEntity(),
		TariffID:   tariffID,
		PlotID:     plotID,
		Amount:     amount,
		Comment:    comment,
		CreatedBy:  createdBy,
	}, nil
}
