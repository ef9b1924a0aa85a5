package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// RepaymentPlanService maintains debt repayment plan records
type RepaymentPlanService struct {
	planRepo billing.RepaymentPlanRepository
	plotRepo billing.PlotRepository
	audit    shared.AuditRecorder
}

// NewRepaymentPlanService creates a new RepaymentPlanService
func NewRepaymentPlanService(
	planRepo billing.RepaymentPlanRepository,
	plotRepo billing.PlotRepository,
	audit shared.AuditRecorder,
) *RepaymentPlanService {
	return &RepaymentPlanService{
		planRepo: planRepo,
		plotRepo: plotRepo,
		audit:    audit,
	}
}

// UpsertPlanRequest carries plan create-or-update inputs. On update only
// the set pointers change.
type UpsertPlanRequest struct {
	TotalDebt *valueobject.Money           `json:"total_debt"`
	Deadline  *time.Time                   `json:"deadline"`
	Status    *billing.RepaymentPlanStatus `json:"status"`
	Comment   *string                      `json:"comment"`
}

// Upsert updates the live plan keyed by (plot, period) or creates one in
// pending status. A nil periodID addresses the plot-wide plan. The live plan
// is the most recent non-terminal one for that key.
func (s *RepaymentPlanService) Upsert(ctx context.Context, plotID uuid.UUID, periodID *uuid.UUID, req UpsertPlanRequest, actorID uuid.UUID) (*billing.DebtRepaymentPlan, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "repayment_plan", "upsert")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPlotID, plotID.String(),
		telemetry.SpanAttrActorID, actorID.String(),
	)

	plot, err := s.plotRepo.FindByID(ctx, plotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get plot: %w", err)
	}
	if plot == nil {
		return nil, shared.NewDomainError("PLOT_NOT_FOUND", "Plot not found")
	}

	plans, err := s.planRepo.FindByPlot(ctx, plotID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}

	var live *billing.DebtRepaymentPlan
	for _, p := range plans {
		if !p.Status.IsTerminal() && p.CoversPeriod(periodID) && (live == nil || p.CreatedAt.After(live.CreatedAt)) {
			live = p
		}
	}

	if live == nil {
		if req.TotalDebt == nil || req.Deadline == nil {
			err := shared.NewDomainError("INVALID_INPUT", "Creating a plan requires total debt and deadline")
			telemetry.RecordError(span, err)
			return nil, err
		}
		comment := ""
		if req.Comment != nil {
			comment = *req.Comment
		}
		plan, err := billing.NewDebtRepaymentPlan(plotID, periodID, *req.TotalDebt, *req.Deadline, comment, actorID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.planRepo.Save(ctx, plan); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to save plan: %w", err)
		}
		after := map[string]any{
			"plot_id":    plotID.String(),
			"total_debt": plan.TotalDebt.StringFixed(2),
			"deadline":   plan.Deadline.Format("2006-01-02"),
		}
		if periodID != nil {
			after["period_id"] = periodID.String()
		}
		s.audit.Record(ctx, shared.AuditEntry{
			ActorID:    actorID,
			Action:     "repayment_plan.create",
			EntityType: "DebtRepaymentPlan",
			EntityID:   plan.ID,
			After:      after,
		})
		return plan, nil
	}

	before := map[string]any{
		"status":     string(live.Status),
		"total_debt": live.TotalDebt.StringFixed(2),
		"deadline":   live.Deadline.Format("2006-01-02"),
	}
	patch := billing.RepaymentPlanPatch{
		TotalDebt: req.TotalDebt,
		Deadline:  req.Deadline,
		Status:    req.Status,
		Comment:   req.Comment,
	}
	if err := live.ApplyPatch(patch, actorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.planRepo.SaveWithLock(ctx, live); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    actorID,
		Action:     "repayment_plan.update",
		EntityType: "DebtRepaymentPlan",
		EntityID:   live.ID,
		Before:     before,
		After: map[string]any{
			"status":     string(live.Status),
			"total_debt": live.TotalDebt.StringFixed(2),
			"deadline":   live.Deadline.Format("2006-01-02"),
		},
	})
	return live, nil
}

// Get loads a plan by ID
func (s *RepaymentPlanService) Get(ctx context.Context, id uuid.UUID) (*billing.DebtRepaymentPlan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, shared.NewDomainError("PLAN_NOT_FOUND", "Repayment plan not found")
	}
	return plan, nil
}

// ListByPlot returns all plans of one plot, newest first
func (s *RepaymentPlanService) ListByPlot(ctx context.Context, plotID uuid.UUID) ([]*billing.DebtRepaymentPlan, error) {
	return s.planRepo.FindByPlot(ctx, plotID)
}

// List returns plans page by page
func (s *RepaymentPlanService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.DebtRepaymentPlan], error) {
	return s.planRepo.FindAll(ctx, filter)
}
