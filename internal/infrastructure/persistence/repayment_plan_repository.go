package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoa/backend/internal/domain/billing"
	"github.com/hoa/backend/internal/domain/shared"
	"github.com/hoa/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRepaymentPlanRepository implements RepaymentPlanRepository using GORM
type GormRepaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormRepaymentPlanRepository creates a new GormRepaymentPlanRepository
func NewGormRepaymentPlanRepository(db *gorm.DB) *GormRepaymentPlanRepository {
	return &GormRepaymentPlanRepository{db: db}
}

// Save creates or updates a repayment plan
func (r *GormRepaymentPlanRepository) Save(ctx context.Context, plan *billing.DebtRepaymentPlan) error {
	model := models.RepaymentPlanModelFromDomain(plan)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormRepaymentPlanRepository) SaveWithLock(ctx context.Context, plan *billing.DebtRepaymentPlan) error {
	model := models.RepaymentPlanModelFromDomain(plan)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a repayment plan by ID
func (r *GormRepaymentPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.DebtRepaymentPlan, error) {
	var model models.RepaymentPlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPlot finds all repayment plans of a plot, newest first
func (r *GormRepaymentPlanRepository) FindByPlot(ctx context.Context, plotID uuid.UUID) ([]*billing.DebtRepaymentPlan, error) {
	var planModels []models.RepaymentPlanModel
	if err := r.db.WithContext(ctx).
		Where("plot_id = ?", plotID).
		Order("created_at DESC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}
	plans := make([]*billing.DebtRepaymentPlan, len(planModels))
	for i := range planModels {
		plans[i] = planModels[i].ToDomain()
	}
	return plans, nil
}

// FindAll finds repayment plans with pagination
func (r *GormRepaymentPlanRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.DebtRepaymentPlan], error) {
	query := r.db.WithContext(ctx).Model(&models.RepaymentPlanModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PlanSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var planModels []models.RepaymentPlanModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]*billing.DebtRepaymentPlan, len(planModels))
	for i := range planModels {
		plans[i] = planModels[i].ToDomain()
	}
	result := shared.NewPaginated(plans, total, filter.Page, filter.PageSize)
	return &result, nil
}
