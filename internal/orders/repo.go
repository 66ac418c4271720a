package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order row only; lines are written by CreateLines
// once the order id is known.
func (r *repository) CreateOrder(ctx context.Context, order *models.BeerOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.BeerOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&lines).Error
}

func (r *repository) FindOrder(ctx context.Context, id int64) (*models.BeerOrder, error) {
	var order models.BeerOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderWithLines loads the aggregate with its lines in id order and each
// line's beer.
func (r *repository) FindOrderWithLines(ctx context.Context, id int64) (*models.BeerOrder, error) {
	var order models.BeerOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Lines.Beer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, order []clause.OrderByColumn) ([]models.BeerOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BeerOrder{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order = pagination.WithTieBreaker(order, "id")

	var rows []models.BeerOrder
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

func (r *repository) CountShipments(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BeerOrderShipment{}).
		Where("beer_order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

// DeleteLines removes the order's lines. Postgres cascades this on its own;
// sqlite only does so when foreign keys are enabled.
func (r *repository) DeleteLines(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Where("beer_order_id = ?", orderID).
		Delete(&models.BeerOrderLine{}).Error
}

func (r *repository) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.BeerOrder{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
