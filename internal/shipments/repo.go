package shipments

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
)

// Repository persists shipments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	OrderExists(ctx context.Context, orderID int64) (bool, error)
	Create(ctx context.Context, shipment *models.BeerOrderShipment) error
	FindByID(ctx context.Context, id int64) (*models.BeerOrderShipment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.BeerOrderShipment, error)
	Update(ctx context.Context, id, expectedVersion int64, columns map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) OrderExists(ctx context.Context, orderID int64) (bool, error) {
	return r.base.Exists(ctx, &models.BeerOrder{}, orderID)
}

func (r *repository) Create(ctx context.Context, shipment *models.BeerOrderShipment) error {
	return r.base.DB(ctx).Create(shipment).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.BeerOrderShipment, error) {
	var shipment models.BeerOrderShipment
	if err := r.base.DB(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID int64) ([]models.BeerOrderShipment, error) {
	var rows []models.BeerOrderShipment
	err := r.base.DB(ctx).
		Where("beer_order_id = ?", orderID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id, expectedVersion int64, columns map[string]any) (int64, error) {
	return r.base.UpdateVersioned(ctx, &models.BeerOrderShipment{}, id, expectedVersion, columns)
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Delete(&models.BeerOrderShipment{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
