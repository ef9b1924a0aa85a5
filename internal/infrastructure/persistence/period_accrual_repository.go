package persistence

import (
	"context"
	"errors"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPeriodAccrualRepository implements PeriodAccrualRepository using GORM
type GormPeriodAccrualRepository struct {
	db *gorm.DB
}

// NewGormPeriodAccrualRepository creates a new GormPeriodAccrualRepository
func NewGormPeriodAccrualRepository(db *gorm.DB) *GormPeriodAccrualRepository {
	return &GormPeriodAccrualRepository{db: db}
}

// Save creates or updates a single accrual line
func (r *GormPeriodAccrualRepository) Save(ctx context.Context, accrual *billing.PeriodAccrual) error {
	model := models.PeriodAccrualModelFromDomain(accrual)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll upserts accrual lines on the (period, plot, type) key.
// Regeneration reuses the existing row so payment allocations survive.
func (r *GormPeriodAccrualRepository) SaveAll(ctx context.Context, accruals []*billing.PeriodAccrual) error {
	if len(accruals) == 0 {
		return nil
	}
	accrualModels := make([]*models.PeriodAccrualModel, len(accruals))
	for i, accrual := range accruals {
		accrualModels[i] = models.PeriodAccrualModelFromDomain(accrual)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "period_id"}, {Name: "plot_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"amount_accrued", "amount_paid", "override_applied", "note", "version", "updated_at",
			}),
		}).
		Create(&accrualModels).Error
}

// FindByID finds an accrual line by ID
func (r *GormPeriodAccrualRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PeriodAccrual, error) {
	var model models.PeriodAccrualModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPeriod finds all accrual lines of a billing period
func (r *GormPeriodAccrualRepository) FindByPeriod(ctx context.Context, periodID uuid.UUID) ([]*billing.PeriodAccrual, error) {
	var accrualModels []models.PeriodAccrualModel
	if err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("plot_id ASC, type ASC").
		Find(&accrualModels).Error; err != nil {
		return nil, err
	}
	return toDomainAccruals(accrualModels), nil
}

// FindByPeriodPlotType finds the single accrual line on the upsert key
func (r *GormPeriodAccrualRepository) FindByPeriodPlotType(ctx context.Context, periodID, plotID uuid.UUID, chargeType billing.ChargeType) (*billing.PeriodAccrual, error) {
	var model models.PeriodAccrualModel
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND plot_id = ? AND type = ?", periodID, plotID, chargeType).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByPlot finds accrual lines of a plot that still have an outstanding amount
func (r *GormPeriodAccrualRepository) FindOpenByPlot(ctx context.Context, plotID uuid.UUID, chargeType billing.ChargeType) ([]*billing.PeriodAccrual, error) {
	var accrualModels []models.PeriodAccrualModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ? AND type = ? AND amount_paid < amount_accrued", plotID, chargeType).
		Order("created_at ASC").
		Find(&accrualModels).Error; err != nil {
		return nil, err
	}
	return toDomainAccruals(accrualModels), nil
}

// FindByPlots finds all accrual lines for a set of plots
func (r *GormPeriodAccrualRepository) FindByPlots(ctx context.Context, plotIDs []uuid.UUID) ([]*billing.PeriodAccrual, error) {
	if len(plotIDs) == 0 {
		return nil, nil
	}
	var accrualModels []models.PeriodAccrualModel
	if err := r.db.WithContext(ctx).
		Where("plot_id IN ?", plotIDs).
		Find(&accrualModels).Error; err != nil {
		return nil, err
	}
	return toDomainAccruals(accrualModels), nil
}

func toDomainAccruals(accrualModels []models.PeriodAccrualModel) []*billing.PeriodAccrual {
	accruals := make([]*billing.PeriodAccrual, len(accrualModels))
	for i := range accrualModels {
		accruals[i] = accrualModels[i].ToDomain()
	}
	return accruals
}
