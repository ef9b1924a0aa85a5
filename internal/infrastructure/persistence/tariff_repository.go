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

// GormTariffRepository implements TariffRepository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// Save creates or updates a tariff
func (r *GormTariffRepository) Save(ctx context.Context, tariff *billing.Tariff) error {
	model := models.TariffModelFromDomain(tariff)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a tariff by ID
func (r *GormTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveAt finds all active tariffs whose validity window covers the date
func (r *GormTariffRepository) FindActiveAt(ctx context.Context, date time.Time) ([]*billing.Tariff, error) {
	var tariffModels []models.TariffModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", billing.TariffStatusActive).
		Where("active_from <= ?", date).
		Where("active_to IS NULL OR active_to >= ?", date).
		Order("active_from ASC").
		Find(&tariffModels).Error; err != nil {
		return nil, err
	}
	tariffs := make([]*billing.Tariff, len(tariffModels))
	for i := range tariffModels {
		tariffs[i] = tariffModels[i].ToDomain()
	}
	return tariffs, nil
}

// FindAll finds tariffs with pagination
func (r *GormTariffRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Tariff], error) {
	query := r.db.WithContext(ctx).Model(&models.TariffModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, TariffSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var tariffModels []models.TariffModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&tariffModels).Error; err != nil {
		return nil, err
	}

	tariffs := make([]*billing.Tariff, len(tariffModels))
	for i := range tariffModels {
		tariffs[i] = tariffModels[i].ToDomain()
	}
	result := shared.NewPaginated(tariffs, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GormTariffOverrideRepository implements TariffOverrideRepository using GORM
type GormTariffOverrideRepository struct {
	db *gorm.DB
}

// NewGormTariffOverrideRepository creates a new GormTariffOverrideRepository
func NewGormTariffOverrideRepository(db *gorm.DB) *GormTariffOverrideRepository {
	return &GormTariffOverrideRepository{db: db}
}

// Save creates or updates an override
func (r *GormTariffOverrideRepository) Save(ctx context.Context, override *billing.TariffOverride) error {
	model := &models.TariffOverrideModel{}
	model.FromDomain(override)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an override by ID
func (r *GormTariffOverrideRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TariffOverride, error) {
	var model models.TariffOverrideModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTariff finds all overrides attached to a tariff
func (r *GormTariffOverrideRepository) FindByTariff(ctx context.Context, tariffID uuid.UUID) ([]*billing.TariffOverride, error) {
	var overrideModels []models.TariffOverrideModel
	if err := r.db.WithContext(ctx).
		Where("tariff_id = ?", tariffID).
		Order("created_at ASC").
		Find(&overrideModels).Error; err != nil {
		return nil, err
	}
	overrides := make([]*billing.TariffOverride, len(overrideModels))
	for i := range overrideModels {
		overrides[i] = overrideModels[i].ToDomain()
	}
	return overrides, nil
}

// Delete removes an override
func (r *GormTariffOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.TariffOverrideModel{}, "id = ?", id).Error
}
