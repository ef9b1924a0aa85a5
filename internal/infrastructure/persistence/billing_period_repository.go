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

// GormBillingPeriodRepository implements BillingPeriodRepository using GORM
type GormBillingPeriodRepository struct {
	db *gorm.DB
}

// NewGormBillingPeriodRepository creates a new GormBillingPeriodRepository
func NewGormBillingPeriodRepository(db *gorm.DB) *GormBillingPeriodRepository {
	return &GormBillingPeriodRepository{db: db}
}

// Save creates or updates a billing period
func (r *GormBillingPeriodRepository) Save(ctx context.Context, period *billing.BillingPeriod) error {
	model := models.BillingPeriodModelFromDomain(period)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBillingPeriodRepository) SaveWithLock(ctx context.Context, period *billing.BillingPeriod) error {
	model := models.BillingPeriodModelFromDomain(period)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", period.ID, period.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a billing period by ID
func (r *GormBillingPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingPeriod, error) {
	var model models.BillingPeriodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateAndCategory finds the period of the given category covering the date
func (r *GormBillingPeriodRepository) FindByDateAndCategory(ctx context.Context, date time.Time, category billing.PeriodCategory) (*billing.BillingPeriod, error) {
	var model models.BillingPeriodModel
	if err := r.db.WithContext(ctx).
		Where("category = ? AND date_from <= ? AND date_to >= ?", category, date, date).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds billing periods by a set of IDs
func (r *GormBillingPeriodRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*billing.BillingPeriod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var periodModels []models.BillingPeriodModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&periodModels).Error; err != nil {
		return nil, err
	}
	periods := make([]*billing.BillingPeriod, len(periodModels))
	for i := range periodModels {
		periods[i] = periodModels[i].ToDomain()
	}
	return periods, nil
}

// FindAll finds billing periods with pagination
func (r *GormBillingPeriodRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.BillingPeriod], error) {
	query := r.db.WithContext(ctx).Model(&models.BillingPeriodModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PeriodSortFields, "date_from")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var periodModels []models.BillingPeriodModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&periodModels).Error; err != nil {
		return nil, err
	}

	periods := make([]*billing.BillingPeriod, len(periodModels))
	for i := range periodModels {
		periods[i] = periodModels[i].ToDomain()
	}
	result := shared.NewPaginated(periods, total, filter.Page, filter.PageSize)
	return &result, nil
}
