package billing

import (
	"time"

	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ResolvedAmount is the outcome of resolving a tariff for one plot.
// When NeedsReview is set the amount is zero and the accrual line must be
// flagged instead of failing the whole generation run.
type ResolvedAmount struct {
	Amount          valueobject.Money
	OverrideApplied bool
	NeedsReview     bool
}

// TariffResolver computes per-plot charge amounts from tariffs and
// per-plot overrides. It is pure: all inputs are passed in, nothing is
// loaded or persisted here.
type TariffResolver struct{}

// NewTariffResolver creates a tariff resolver
func NewTariffResolver() *TariffResolver {
	return &TariffResolver{}
}

// SelectTariff picks the tariff of the given type active on the given date.
// When several match, the one with the latest ActiveFrom wins so that a
// newer rate supersedes an open-ended older one.
func (r *TariffResolver) SelectTariff(tariffs []*Tariff, tariffType TariffType, date time.Time) *Tariff {
	var selected *Tariff
	for _, t := range tariffs {
		if t.Type != tariffType || !t.IsActiveAt(date) {
			continue
		}
		if selected == nil || t.ActiveFrom.After(selected.ActiveFrom) {
			selected = t
		}
	}
	return selected
}

// ResolveAmount computes the charge for one plot under one tariff.
// Override precedence: a per-plot override replaces the computed amount
// entirely, regardless of the tariff unit. For area-unit tariffs a plot
// without survey data cannot be computed and is flagged for review.
func (r *TariffResolver) ResolveAmount(tariff *Tariff, plot *Plot, overrides map[uuid.UUID]*TariffOverride) (ResolvedAmount, error) {
	if tariff == nil {
		return ResolvedAmount{}, shared.NewDomainError("TARIFF_REQUIRED", "Tariff is required to resolve an amount")
	}
	if plot == nil {
		return ResolvedAmount{}, shared.NewDomainError("PLOT_REQUIRED", "Plot is required to resolve an amount")
	}

	if ov, ok := overrides[plot.ID]; ok && ov != nil {
		return ResolvedAmount{Amount: ov.Amount, OverrideApplied: true}, nil
	}

	switch tariff.Unit {
	case TariffUnitPlot:
		return ResolvedAmount{Amount: tariff.Amount}, nil
	case TariffUnitArea:
		if plot.Area == nil || plot.Area.IsZero() {
			return ResolvedAmount{NeedsReview: true, Amount: valueobject.Zero()}, nil
		}
		return ResolvedAmount{Amount: tariff.Amount.Multiply(*plot.Area).Round(2)}, nil
	default:
		return ResolvedAmount{}, shared.NewDomainError("INVALID_TARIFF_UNIT", "Tariff unit is not valid")
	}
}

// OverrideIndex builds a plot-keyed lookup from a list of overrides for a
// single tariff. A later entry for the same plot wins.
func OverrideIndex(overrides []*TariffOverride) map[uuid.UUID]*TariffOverride {
	idx := make(map[uuid.UUID]*TariffOverride, len(overrides))
	for _, ov := range overrides {
		idx[ov.PlotID] = ov
	}
	return idx
}
