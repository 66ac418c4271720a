package beers

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

// Repository persists catalog entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id int64) (*models.Beer, error)
	List(ctx context.Context, nameFragment string, params pagination.Params, order []clause.OrderByColumn) ([]models.Beer, int64, error)
	Create(ctx context.Context, beer *models.Beer) error
	Update(ctx context.Context, id, expectedVersion int64, columns map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	CountOrderLines(ctx context.Context, beerID int64) (int64, error)
}

type repository struct {
	base repo.Base
}

// NewRepository builds a gorm-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Beer, error) {
	var beer models.Beer
	if err := r.base.DB(ctx).First(&beer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &beer, nil
}

func (r *repository) List(ctx context.Context, nameFragment string, params pagination.Params, order []clause.OrderByColumn) ([]models.Beer, int64, error) {
	query := r.base.DB(ctx).Model(&models.Beer{})
	if fragment := strings.TrimSpace(nameFragment); fragment != "" {
		query = query.Where("LOWER(beer_name) LIKE ?", "%"+strings.ToLower(fragment)+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order = pagination.WithTieBreaker(order, "id")
	var rows []models.Beer
	err := query.Session(&gorm.Session{}).
		Order(clause.OrderBy{Columns: order}).
		Offset(params.Offset()).
		Limit(params.Size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Create(ctx context.Context, beer *models.Beer) error {
	return r.base.DB(ctx).Create(beer).Error
}

// Update applies columns when the stored version equals expectedVersion and
// returns the bumped version.
func (r *repository) Update(ctx context.Context, id, expectedVersion int64, columns map[string]any) (int64, error) {
	return r.base.UpdateVersioned(ctx, &models.Beer{}, id, expectedVersion, columns)
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Delete(&models.Beer{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExistingIDs returns the subset of ids that have a catalog row, reading the
// id column only.
func (r *repository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.base.DB(ctx).
		Model(&models.Beer{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *repository) CountOrderLines(ctx context.Context, beerID int64) (int64, error) {
	return r.base.CountWhere(ctx, &models.BeerOrderLine{}, "beer_id = ?", beerID)
}
