package billing

import (
	"sort"

	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TypeBalance is the accrued/paid/debt slice for one charge type
type TypeBalance struct {
	Accrued valueobject.Money `json:"accrued"`
	Paid    valueobject.Money `json:"paid"`
	Debt    valueobject.Money `json:"debt"` // max(0, accrued - paid)
}

// PlotBalanceRow is one plot's line in a reconciliation statement
type PlotBalanceRow struct {
	PlotID       uuid.UUID                  `json:"plot_id"`
	PlotNumber   string                     `json:"plot_number"`
	Accrued      valueobject.Money          `json:"accrued"`
	Paid         valueobject.Money          `json:"paid"`
	Debt         valueobject.Money          `json:"debt"`   // max(0, accrued - paid)
	Credit       valueobject.Money          `json:"credit"` // unallocated payment remainders
	ByType       map[ChargeType]TypeBalance `json:"by_type"`
	NeedsReview  bool                       `json:"needs_review"`
	AccrualCount int                        `json:"accrual_count"`
}

// ReconciliationStatement is an on-demand projection of accruals against
// payments. It is computed, never stored.
type ReconciliationStatement struct {
	Rows        []PlotBalanceRow  `json:"rows"`
	TotalAccrued valueobject.Money `json:"total_accrued"`
	TotalPaid    valueobject.Money `json:"total_paid"`
	TotalDebt    valueobject.Money `json:"total_debt"`
	TotalCredit  valueobject.Money `json:"total_credit"`
}

// ReconciliationBuilder folds ledger lines and payment credits into a
// per-plot balance statement. Pure computation over passed-in data.
type ReconciliationBuilder struct{}

// NewReconciliationBuilder creates a reconciliation builder
func NewReconciliationBuilder() *ReconciliationBuilder {
	return &ReconciliationBuilder{}
}

// Build produces the statement for the given plots. Voided payments must be
// filtered out by the caller before passing; accrued and paid sums come from
// the accrual lines, credit from the payments' unallocated remainders.
func (b *ReconciliationBuilder) Build(plots []*Plot, accruals []*PeriodAccrual, payments []*Payment) *ReconciliationStatement {
	type typeAcc struct {
		accrued valueobject.Money
		paid    valueobject.Money
	}
	type acc struct {
		accrued     valueobject.Money
		paid        valueobject.Money
		credit      valueobject.Money
		byType      map[ChargeType]*typeAcc
		needsReview bool
		count       int
	}

	byPlot := make(map[uuid.UUID]*acc, len(plots))
	for _, p := range plots {
		byPlot[p.ID] = &acc{
			accrued: valueobject.Zero(),
			paid:    valueobject.Zero(),
			credit:  valueobject.Zero(),
			byType:  make(map[ChargeType]*typeAcc),
		}
	}

	for _, a := range accruals {
		entry, ok := byPlot[a.PlotID]
		if !ok {
			continue
		}
		entry.accrued = entry.accrued.Add(a.AmountAccrued)
		entry.paid = entry.paid.Add(a.AmountPaid)
		entry.count++
		if a.NeedsReview() {
			entry.needsReview = true
		}
		slice, ok := entry.byType[a.Type]
		if !ok {
			slice = &typeAcc{accrued: valueobject.Zero(), paid: valueobject.Zero()}
			entry.byType[a.Type] = slice
		}
		slice.accrued = slice.accrued.Add(a.AmountAccrued)
		slice.paid = slice.paid.Add(a.AmountPaid)
	}

	for _, p := range payments {
		entry, ok := byPlot[p.PlotID]
		if !ok || p.IsVoided() {
			continue
		}
		entry.credit = entry.credit.Add(p.UnallocatedAmount)
	}

	stmt := &ReconciliationStatement{
		Rows:         make([]PlotBalanceRow, 0, len(plots)),
		TotalAccrued: valueobject.Zero(),
		TotalPaid:    valueobject.Zero(),
		TotalDebt:    valueobject.Zero(),
		TotalCredit:  valueobject.Zero(),
	}

	for _, plot := range plots {
		entry := byPlot[plot.ID]
		debt := entry.accrued.Subtract(entry.paid)
		if debt.IsNegative() {
			debt = valueobject.Zero()
		}
		byType := make(map[ChargeType]TypeBalance, len(entry.byType))
		for chargeType, slice := range entry.byType {
			typeDebt := slice.accrued.Subtract(slice.paid)
			if typeDebt.IsNegative() {
				typeDebt = valueobject.Zero()
			}
			byType[chargeType] = TypeBalance{
				Accrued: slice.accrued,
				Paid:    slice.paid,
				Debt:    typeDebt,
			}
		}
		stmt.Rows = append(stmt.Rows, PlotBalanceRow{
			PlotID:       plot.ID,
			PlotNumber:   plot.Number,
			Accrued:      entry.accrued,
			Paid:         entry.paid,
			Debt:         debt,
			Credit:       entry.credit,
			ByType:       byType,
			NeedsReview:  entry.needsReview,
			AccrualCount: entry.count,
		})
		stmt.TotalAccrued = stmt.TotalAccrued.Add(entry.accrued)
		stmt.TotalPaid = stmt.TotalPaid.Add(entry.paid)
		stmt.TotalDebt = stmt.TotalDebt.Add(debt)
		stmt.TotalCredit = stmt.TotalCredit.Add(entry.credit)
	}

	sort.Slice(stmt.Rows, func(i, j int) bool {
		return stmt.Rows[i].PlotNumber < stmt.Rows[j].PlotNumber
	})
	return stmt
}

// FilterWithDebt returns only rows carrying a positive debt
func (s *ReconciliationStatement) FilterWithDebt() []PlotBalanceRow {
	rows := make([]PlotBalanceRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.Debt.IsPositive() {
			rows = append(rows, r)
		}
	}
	return rows
}

// SortByDebt returns the rows ordered by debt descending, heaviest debtors first
func (s *ReconciliationStatement) SortByDebt() []PlotBalanceRow {
	rows := make([]PlotBalanceRow, len(s.Rows))
	copy(rows, s.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Debt.GreaterThan(rows[j].Debt)
	})
	return rows
}
