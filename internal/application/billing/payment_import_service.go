package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/domain/shared/valueobject"
	"github.com/hoa/backend/internal/infrastructure/lock"
	"github.com/hoa/backend/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PaymentImportRow is one payment record from a bank statement or manual
// entry form. Plot matching is by registry number.
type PaymentImportRow struct {
	PlotNumber string `json:"plot_number" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
	PaidAt     string `json:"paid_at" validate:"required"` // YYYY-MM-DD
	Method     string `json:"method" validate:"required,oneof=bank cash manual"`
	Category   string `json:"category" validate:"required,oneof=membership target electric"`
	Reference  string `json:"reference" validate:"omitempty,max=128"`
}

// RowError reports why one import row was skipped
type RowError struct {
	Row    int                `json:"row"`
	Reason billing.SkipReason `json:"reason"`
	Detail string             `json:"detail"`
}

// ImportSummary reports the outcome of one import run
type ImportSummary struct {
	BatchID     uuid.UUID                  `json:"batch_id"`
	TotalRows   int                        `json:"total_rows"`
	Created     int                        `json:"created"`
	Skipped     int                        `json:"skipped"`
	SkipReasons map[billing.SkipReason]int `json:"skip_reasons"`
	Errors      []RowError                 `json:"errors,omitempty"`
}

// ImportMeta describes the source of one import run
type ImportMeta struct {
	Source   string    `json:"source"`
	FileName string    `json:"file_name"`
	ActorID  uuid.UUID `json:"actor_id"`
}

// PaymentImportService imports payment rows, matches them to plots,
// deduplicates and allocates each accepted payment oldest-debt-first.
// Rows are processed independently: a bad row is skipped and counted,
// it never rolls back rows already created.
type PaymentImportService struct {
	txScope     TransactionScope
	periodSvc   *PeriodService
	plotRepo    billing.PlotRepository
	paymentRepo billing.PaymentRepository
	locker      lock.PeriodLocker
	events      shared.EventPublisher
	audit       shared.AuditRecorder
	validate    *validator.Validate
}

// NewPaymentImportService creates a new PaymentImportService
func NewPaymentImportService(
	txScope TransactionScope,
	periodSvc *PeriodService,
	plotRepo billing.PlotRepository,
	paymentRepo billing.PaymentRepository,
	locker lock.PeriodLocker,
	events shared.EventPublisher,
	audit shared.AuditRecorder,
) *PaymentImportService {
	return &PaymentImportService{
		txScope:     txScope,
		periodSvc:   periodSvc,
		plotRepo:    plotRepo,
		paymentRepo: paymentRepo,
		locker:      locker,
		events:      events,
		audit:       audit,
		validate:    validator.New(),
	}
}

// ImportPayments processes the rows one by one and returns a batch summary
func (s *PaymentImportService) ImportPayments(ctx context.Context, rows []PaymentImportRow, meta ImportMeta) (*ImportSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "import")
	defer span.End()

	if len(rows) == 0 {
		err := shared.NewDomainError("EMPTY_IMPORT", "Import contains no rows")
		telemetry.RecordError(span, err)
		return nil, err
	}

	batch := billing.NewPaymentImportBatch(meta.Source, meta.FileName, meta.ActorID)
	summary := &ImportSummary{
		BatchID:     batch.ID,
		SkipReasons: make(map[billing.SkipReason]int),
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchID, batch.ID.String())

	for i, row := range rows {
		if err := s.importRow(ctx, row, batch); err != nil {
			reason := skipReasonFor(err)
			batch.RecordSkipped(reason)
			summary.Skipped++
			summary.SkipReasons[reason]++
			summary.Errors = append(summary.Errors, RowError{Row: i + 1, Reason: reason, Detail: err.Error()})
			continue
		}
		batch.RecordCreated()
		summary.Created++
	}
	summary.TotalRows = batch.TotalRows

	if err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.BatchRepo().Save(ctx, batch)
	}); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save import batch: %w", err)
	}

	s.audit.Record(ctx, shared.AuditEntry{
		ActorID:    meta.ActorID,
		Action:     "payment.import",
		EntityType: "PaymentImportBatch",
		EntityID:   batch.ID,
		After: map[string]any{
			"source":  meta.Source,
			"total":   summary.TotalRows,
			"created": summary.Created,
			"skipped": summary.Skipped,
		},
	})
	telemetry.AddEvent(span, "import_finished",
		"total", summary.TotalRows,
		"created", summary.Created,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (s *PaymentImportService) importRow(ctx context.Context, row PaymentImportRow, batch *billing.PaymentImportBatch) error {
	if err := s.validate.Struct(row); err != nil {
		return shared.NewDomainError("INVALID_ROW", err.Error())
	}

	amount, err := valueobject.NewMoneyFromString(row.Amount)
	if err != nil {
		return shared.NewDomainError("INVALID_ROW", fmt.Sprintf("Bad amount %q", row.Amount))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_ROW", "Payment amount must be positive")
	}
	paidAt, err := time.Parse("2006-01-02", row.PaidAt)
	if err != nil {
		return shared.NewDomainError("INVALID_ROW", fmt.Sprintf("Bad date %q", row.PaidAt))
	}

	plot, err := s.plotRepo.FindByNumber(ctx, row.PlotNumber)
	if err != nil {
		return fmt.Errorf("failed to look up plot: %w", err)
	}
	if plot == nil {
		return shared.NewDomainError("PLOT_NOT_FOUND", fmt.Sprintf("No plot with number %q", row.PlotNumber))
	}

	// dedup: exact bank reference first, else same plot, amount, method and day
	if row.Reference != "" {
		existing, err := s.paymentRepo.FindByReference(ctx, row.Reference)
		if err != nil {
			return fmt.Errorf("failed dedup lookup: %w", err)
		}
		if existing != nil {
			return shared.ErrDuplicatePayment
		}
	} else {
		existing, err := s.paymentRepo.FindSimilar(ctx, plot.ID, amount.StringFixed(2), billing.PaymentMethod(row.Method), paidAt)
		if err != nil {
			return fmt.Errorf("failed dedup lookup: %w", err)
		}
		if existing != nil {
			return shared.ErrDuplicatePayment
		}
	}

	category := billing.ChargeType(row.Category)
	periodCategory := billing.PeriodCategoryGeneral
	if category == billing.ChargeTypeElectric {
		periodCategory = billing.PeriodCategoryElectric
	}
	period, err := s.periodSvc.EnsurePeriodFor(ctx, paidAt, periodCategory)
	if err != nil {
		return err
	}

	payment, err := billing.NewPayment(plot.ID, period.ID, amount, paidAt, billing.PaymentMethod(row.Method), category, row.Reference)
	if err != nil {
		return err
	}
	payment.WithImportBatch(batch.ID)

	// locks on the touched periods are held until the transaction returns
	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		open, txErr := repos.AccrualRepo().FindOpenByPlot(ctx, plot.ID, category)
		if txErr != nil {
			return fmt.Errorf("failed to load open accruals: %w", txErr)
		}

		// serialize with generation and lock transitions on every period the
		// allocation may touch
		ids := accrualPeriodIDs(open)
		for _, id := range ids {
			release, lockErr := s.locker.Acquire(ctx, id.String(), periodLockTTL)
			if lockErr != nil {
				return lockErr
			}
			releases = append(releases, release)
		}

		open, strategy, txErr := s.mutableAccruals(ctx, repos, open, ids)
		if txErr != nil {
			return txErr
		}
		if _, txErr = strategy.Allocate(payment, open); txErr != nil {
			return txErr
		}

		for _, accrual := range open {
			if txErr = repos.AccrualRepo().Save(ctx, accrual); txErr != nil {
				return fmt.Errorf("failed to save accrual: %w", txErr)
			}
		}
		if txErr = repos.PaymentRepo().Save(ctx, payment); txErr != nil {
			return fmt.Errorf("failed to save payment: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	publishEvents(ctx, s.events, payment)
	return nil
}

// accrualPeriodIDs returns the distinct period IDs of the accruals in a
// stable order so concurrent imports acquire their locks without inversion
func accrualPeriodIDs(open []*billing.PeriodAccrual) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(open))
	seen := make(map[uuid.UUID]bool, len(open))
	for _, a := range open {
		if !seen[a.PeriodID] {
			seen[a.PeriodID] = true
			ids = append(ids, a.PeriodID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// mutableAccruals re-reads the periods under their locks, drops accruals
// whose period has left draft and orders the rest oldest period first.
// A locked ledger stays untouched, the unmatched amount stays on the
// payment as credit.
func (s *PaymentImportService) mutableAccruals(ctx context.Context, repos TransactionalRepositories, open []*billing.PeriodAccrual, ids []uuid.UUID) ([]*billing.PeriodAccrual, *billing.OldestFirstStrategy, error) {
	starts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) > 0 {
		periods, err := repos.PeriodRepo().FindByIDs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load periods for allocation: %w", err)
		}
		for _, p := range periods {
			if p.IsMutable() {
				starts[p.ID] = p.DateFrom.Unix()
			}
		}
	}

	allocatable := make([]*billing.PeriodAccrual, 0, len(open))
	for _, a := range open {
		if _, ok := starts[a.PeriodID]; ok {
			allocatable = append(allocatable, a)
		}
	}
	return allocatable, billing.NewOldestFirstStrategy(starts), nil
}

func skipReasonFor(err error) billing.SkipReason {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case "DUPLICATE_PAYMENT":
			return billing.SkipReasonDuplicate
		case "PLOT_NOT_FOUND":
			return billing.SkipReasonNotFound
		}
	}
	return billing.SkipReasonInvalid
}
