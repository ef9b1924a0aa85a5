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

// GormPlotRepository implements PlotRepository using GORM
type GormPlotRepository struct {
	db *gorm.DB
}

// NewGormPlotRepository creates a new GormPlotRepository
func NewGormPlotRepository(db *gorm.DB) *GormPlotRepository {
	return &GormPlotRepository{db: db}
}

// FindByID finds a plot by ID
func (r *GormPlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Plot, error) {
	var model models.PlotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a plot by its registry number
func (r *GormPlotRepository) FindByNumber(ctx context.Context, number string) (*billing.Plot, error) {
	var model models.PlotModel
	if err := r.db.WithContext(ctx).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive finds all active plots ordered by number
func (r *GormPlotRepository) FindActive(ctx context.Context) ([]*billing.Plot, error) {
	var plotModels []models.PlotModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", billing.PlotStatusActive).
		Order("number ASC").
		Find(&plotModels).Error; err != nil {
		return nil, err
	}
	plots := make([]*billing.Plot, len(plotModels))
	for i := range plotModels {
		plots[i] = plotModels[i].ToDomain()
	}
	return plots, nil
}

// FindAll finds plots with pagination
func (r *GormPlotRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*billing.Plot], error) {
	query := r.db.WithContext(ctx).Model(&models.PlotModel{})
	if filter.Search != "" {
		query = query.Where("number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PlotSortFields, "number")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var plotModels []models.PlotModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&plotModels).Error; err != nil {
		return nil, err
	}

	plots := make([]*billing.Plot, len(plotModels))
	for i := range plotModels {
		plots[i] = plotModels[i].ToDomain()
	}
	result := shared.NewPaginated(plots, total, filter.Page, filter.PageSize)
	return &result, nil
}
