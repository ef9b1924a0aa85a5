package persistence

import (
	"context"

	appbilling "github.com/hoa/backend/internal/application/billing"
	"github.com/hoa/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope over a
// GORM database transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Repositories handed to fn
// are bound to the transaction, so an error rolls everything back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) PeriodRepo() billing.BillingPeriodRepository {
	return NewGormBillingPeriodRepository(r.tx)
}

func (r txRepositories) AccrualRepo() billing.PeriodAccrualRepository {
	return NewGormPeriodAccrualRepository(r.tx)
}

func (r txRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r txRepositories) BatchRepo() billing.PaymentImportBatchRepository {
	return NewGormPaymentImportBatchRepository(r.tx)
}
