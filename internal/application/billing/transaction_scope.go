package billing

import (
	"context"

	"github.com/hoa/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// Repository operations performed inside Execute share one database
// transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// A returned error rolls the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to billing repositories scoped
// to one transaction.
type TransactionalRepositories interface {
	PeriodRepo() billing.BillingPeriodRepository
	AccrualRepo() billing.PeriodAccrualRepository
	PaymentRepo() billing.PaymentRepository
	BatchRepo() billing.PaymentImportBatchRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a transaction. Used in tests.
type NoOpTransactionScope struct {
	periodRepo  billing.BillingPeriodRepository
	accrualRepo billing.PeriodAccrualRepository
	paymentRepo billing.PaymentRepository
	batchRepo   billing.PaymentImportBatchRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	periodRepo billing.BillingPeriodRepository,
	accrualRepo billing.PeriodAccrualRepository,
	paymentRepo billing.PaymentRepository,
	batchRepo billing.PaymentImportBatchRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		periodRepo:  periodRepo,
		accrualRepo: accrualRepo,
		paymentRepo: paymentRepo,
		batchRepo:   batchRepo,
	}
}

// Execute runs fn against the plain repositories
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(noOpRepos{s})
}

type noOpRepos struct{ s *NoOpTransactionScope }

func (r noOpRepos) PeriodRepo() billing.BillingPeriodRepository        { return r.s.periodRepo }
func (r noOpRepos) AccrualRepo() billing.PeriodAccrualRepository       { return r.s.accrualRepo }
func (r noOpRepos) PaymentRepo() billing.PaymentRepository             { return r.s.paymentRepo }
func (r noOpRepos) BatchRepo() billing.PaymentImportBatchRepository    { return r.s.batchRepo }
