package orders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

// Repository defines persistence operations for the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.BeerOrder) error
	CreateLines(ctx context.Context, lines []models.BeerOrderLine) error
	FindOrder(ctx context.Context, id int64) (*models.BeerOrder, error)
	FindOrderWithLines(ctx context.Context, id int64) (*models.BeerOrder, error)
	ListOrders(ctx context.Context, params pagination.Params, order []clause.OrderByColumn) ([]models.BeerOrder, int64, error)
	CountShipments(ctx context.Context, orderID int64) (int64, error)
	DeleteLines(ctx context.Context, orderID int64) error
	DeleteOrder(ctx context.Context, id int64) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderMetrics interface {
	IncOrdersCreated()
}
