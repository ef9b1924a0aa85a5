package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a non-voided payment by its bank reference.
// Empty references never match so manual entries do not collide.
func (r *GormPaymentRepository) FindByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	if reference == "" {
		return nil, nil
	}
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("reference = ? AND status = ?", reference, billing.PaymentStatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindSimilar finds a non-voided payment with the same plot, amount and method
// paid on the same calendar day. Used to dedup rows without a bank reference.
func (r *GormPaymentRepository) FindSimilar(ctx context.Context, plotID uuid.UUID, amount string, method billing.PaymentMethod, day time.Time) (*billing.Payment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ? AND amount = ? AND method = ? AND status = ?", plotID, amount, method, billing.PaymentStatusActive).
		Where("paid_at >= ? AND paid_at < ?", dayStart, dayEnd).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPlot finds all payments of a plot ordered by payment date
func (r *GormPaymentRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ?", plotID).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindByPlots finds all payments for a set of plots
func (r *GormPaymentRepository) FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*billing.Payment, error) {
	if len(plotIDs) == 0 {
		return nil, nil
	}
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("plot_id IN ?", plotIDs).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindAll finds payments with pagination
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Payment], error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "paid_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var paymentModels []models.PaymentModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toDomainPayments(paymentModels), total, filter.Page, filter.PageSize)
	return &result, nil
}

func toDomainPayments(paymentModels []models.PaymentModel) []*billing.Payment {
	payments := make([]*billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments
}

// GormPaymentImportBatchRepository implements PaymentImportBatchRepository using GORM
type GormPaymentImportBatchRepository struct {
	db *gorm.DB
}

// NewGormPaymentImportBatchRepository creates a new GormPaymentImportBatchRepository
func NewGormPaymentImportBatchRepository(db *gorm.DB) *GormPaymentImportBatchRepository {
	return &GormPaymentImportBatchRepository{db: db}
}

// Save creates or updates an import batch record
func (r *GormPaymentImportBatchRepository) Save(ctx context.Context, batch *billing.PaymentImportBatch) error {
	model := &models.PaymentImportBatchModel{}
	model.FromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an import batch by ID
func (r *GormPaymentImportBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentImportBatch, error) {
	var model models.PaymentImportBatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
