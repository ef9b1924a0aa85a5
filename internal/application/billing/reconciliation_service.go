package billing

import (
	"context"
	"fmt"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ReconciliationQuery controls filtering and ordering of the statement rows
type ReconciliationQuery struct {
	OnlyWithDebt bool   `json:"only_with_debt"`
	Sort         string `json:"sort"` // plot (default) | debt_asc | debt_desc
}

// ReconciliationService builds per-plot balance statements on demand.
// Statements are projections over the ledger, nothing is stored.
type ReconciliationService struct {
	periodRepo  billing.BillingPeriodRepository
	plotRepo    billing.PlotRepository
	accrualRepo billing.PeriodAccrualRepository
	paymentRepo billing.PaymentRepository
	builder     *billing.ReconciliationBuilder
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	periodRepo billing.BillingPeriodRepository,
	plotRepo billing.PlotRepository,
	accrualRepo billing.PeriodAccrualRepository,
	paymentRepo billing.PaymentRepository,
) *ReconciliationService {
	return &ReconciliationService{
		periodRepo:  periodRepo,
		plotRepo:    plotRepo,
		accrualRepo: accrualRepo,
		paymentRepo: paymentRepo,
		builder:     billing.NewReconciliationBuilder(),
	}
}

// PeriodReconciliation is one period's statement with its query applied
type PeriodReconciliation struct {
	PeriodID    uuid.UUID                 `json:"period_id"`
	PeriodLabel string                    `json:"period_label"`
	Status      billing.PeriodStatus      `json:"status"`
	Rows        []billing.PlotBalanceRow  `json:"rows"`
	Totals      ReconciliationTotals      `json:"totals"`
}

// ReconciliationTotals carries the statement-wide sums
type ReconciliationTotals struct {
	Accrued string `json:"accrued"`
	Paid    string `json:"paid"`
	Debt    string `json:"debt"`
	Credit  string `json:"credit"`
}

// BuildPeriodReconciliation computes the statement for one period
func (s *ReconciliationService) BuildPeriodReconciliation(ctx context.Context, periodID uuid.UUID, query ReconciliationQuery) (*PeriodReconciliation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "build_period")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPeriodID, periodID.String())

	period, err := s.periodRepo.FindByID(ctx, periodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	if period == nil {
		return nil, shared.NewDomainError("PERIOD_NOT_FOUND", "Billing period not found")
	}

	plots, err := s.plotRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load plots: %w", err)
	}
	accruals, err := s.accrualRepo.FindByPeriod(ctx, periodID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load accruals: %w", err)
	}

	plotIDs := make([]uuid.UUID, 0, len(plots))
	for _, p := range plots {
		plotIDs = append(plotIDs, p.ID)
	}
	payments, err := s.paymentRepo.FindByPlots(ctx, plotIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	stmt := s.builder.Build(plots, accruals, payments)

	rows := stmt.Rows
	if query.OnlyWithDebt {
		rows = stmt.FilterWithDebt()
	}
	switch query.Sort {
	case "debt_desc":
		rows = sortByDebtFiltered(stmt, query.OnlyWithDebt, true)
	case "debt_asc":
		rows = sortByDebtFiltered(stmt, query.OnlyWithDebt, false)
	}

	return &PeriodReconciliation{
		PeriodID:    period.ID,
		PeriodLabel: period.Label(),
		Status:      period.Status,
		Rows:        rows,
		Totals: ReconciliationTotals{
			Accrued: stmt.TotalAccrued.StringFixed(2),
			Paid:    stmt.TotalPaid.StringFixed(2),
			Debt:    stmt.TotalDebt.StringFixed(2),
			Credit:  stmt.TotalCredit.StringFixed(2),
		},
	}, nil
}

// BuildPlotStatement computes one plot's balance across all its periods
func (s *ReconciliationService) BuildPlotStatement(ctx context.Context, plotID uuid.UUID) (*billing.ReconciliationStatement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "build_plot")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPlotID, plotID.String())

	plot, err := s.plotRepo.FindByID(ctx, plotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}
	if plot == nil {
		return nil, shared.NewDomainError("PLOT_NOT_FOUND", "Plot not found")
	}

	accruals, err := s.accrualRepo.FindByPlots(ctx, []uuid.UUID{plotID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load accruals: %w", err)
	}
	payments, err := s.paymentRepo.FindByPlot(ctx, plotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	return s.builder.Build([]*billing.Plot{plot}, accruals, payments), nil
}

func sortByDebtFiltered(stmt *billing.ReconciliationStatement, onlyWithDebt, desc bool) []billing.PlotBalanceRow {
	rows := stmt.SortByDebt()
	if !desc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	if !onlyWithDebt {
		return rows
	}
	filtered := rows[:0:0]
	for _, r := range rows {
		if r.Debt.IsPositive() {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
