package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/beers"
	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

const resourceOrder = "beer_order"

// Service defines order aggregate operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (int64, error)
	GetOrder(ctx context.Context, id int64) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params) (OrderPage, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type service struct {
	repo    Repository
	beers   beers.Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics orderMetrics
	logg    *logger.Logger
	pages   config.PaginationConfig
	now     func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, beerRepo beers.Repository, tx txRunner, outbox outboxPublisher, metrics orderMetrics, logg *logger.Logger, pages config.PaginationConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if beerRepo == nil {
		return nil, fmt.Errorf("beer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if metrics == nil {
		return nil, fmt.Errorf("order metrics required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		beers:   beerRepo,
		tx:      tx,
		outbox:  outbox,
		metrics: metrics,
		logg:    logg,
		pages:   pages,
		now:     time.Now,
	}, nil
}

// CreateOrder persists a NEW order with one NEW line per item. Every beer
// must exist; otherwise nothing is written.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (int64, error) {
	if err := validateCreate(input); err != nil {
		return 0, err
	}

	var orderID int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureBeersExist(ctx, tx, input.Items); err != nil {
			return err
		}

		repo := s.repo.WithTx(tx)
		order := &models.BeerOrder{
			CustomerRef:   input.CustomerRef,
			PaymentAmount: input.PaymentAmount,
			Status:        enums.BeerOrderStatusNew,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert beer order")
		}
		for _, item := range input.Items {
			order.AddLine(models.BeerOrderLine{
				BeerID:            item.BeerID,
				OrderQuantity:     item.Quantity,
				QuantityAllocated: 0,
				Status:            enums.OrderLineStatusNew,
			})
		}
		if err := repo.CreateLines(ctx, order.Lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert beer order lines")
		}
		orderID = order.ID

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBeerOrderCreated,
			AggregateType: enums.AggregateBeerOrder,
			AggregateID:   order.ID,
			Data:          createdEvent(order),
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return 0, err
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create beer order")
	}

	s.metrics.IncOrdersCreated()
	s.logg.Info(s.logg.WithResource(ctx, resourceOrder, orderID), "beer order created")
	return orderID, nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.repo.FindOrderWithLines(ctx, id)
	if err != nil {
		return nil, lookupError(err, id)
	}
	return NewOrderDTO(order), nil
}

// ListOrders pages order summaries. createdAt is accepted as a sort alias of
// createdDate.
func (s *service) ListOrders(ctx context.Context, params pagination.Params) (OrderPage, error) {
	params = params.Normalize(DefaultPageSize, s.pages.MaxSize)
	params.Sort = params.Sort.Rename("createdAt", "createdDate")

	order, err := params.Sort.Clauses(sortColumns)
	if err != nil {
		return OrderPage{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"sort": err.Error()})
	}
	rows, total, err := s.repo.ListOrders(ctx, params, order)
	if err != nil {
		return OrderPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list beer orders")
	}
	page := pagination.NewPage(rows, params, total)
	return pagination.MapPage(page, func(o models.BeerOrder) OrderSummaryDTO { return NewOrderSummaryDTO(&o) }), nil
}

// DeleteOrder removes the order and its lines. Orders with shipments are
// kept.
func (s *service) DeleteOrder(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindOrder(ctx, id); err != nil {
			return lookupError(err, id)
		}

		shipments, err := repo.CountShipments(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count shipments")
		}
		if shipments > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("beer order %d has shipments", id)).
				WithDetails(map[string]any{"resource": resourceOrder, "id": id, "shipments": shipments})
		}

		if err := repo.DeleteLines(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete beer order lines")
		}
		deleted, err := repo.DeleteOrder(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete beer order")
		}
		if !deleted {
			return pkgerrors.NotFound(resourceOrder, id)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBeerOrderDeleted,
			AggregateType: enums.AggregateBeerOrder,
			AggregateID:   id,
			Data:          payloads.BeerOrderDeletedEvent{OrderID: id, DeletedAt: s.now().UTC()},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete beer order")
	}
	s.logg.Info(s.logg.WithResource(ctx, resourceOrder, id), "beer order deleted")
	return nil
}

// ensureBeersExist resolves every referenced beer by id inside tx.
func (s *service) ensureBeersExist(ctx context.Context, tx *gorm.DB, items []OrderItemInput) error {
	wanted := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, seen := wanted[item.BeerID]; seen {
			continue
		}
		wanted[item.BeerID] = struct{}{}
		ids = append(ids, item.BeerID)
	}

	found, err := s.beers.WithTx(tx).ExistingIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve beers")
	}
	for _, id := range found {
		delete(wanted, id)
	}
	if len(wanted) == 0 {
		return nil
	}

	missing := make([]int64, 0, len(wanted))
	for id := range wanted {
		missing = append(missing, id)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("beer %d not found", missing[0])).
		WithDetails(map[string]any{"resource": "beer", "id": missing[0], "missingIds": missing})
}

func validateCreate(input CreateOrderInput) error {
	details := map[string]string{}
	if input.PaymentAmount.IsNegative() {
		details["paymentAmount"] = "must be at least 0"
	}
	if len(input.Items) == 0 {
		details["items"] = "must not be empty"
	}
	for i, item := range input.Items {
		if item.BeerID <= 0 {
			details[fmt.Sprintf("items[%d].beerId", i)] = "must be greater than 0"
		}
		if item.Quantity <= 0 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than 0"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func createdEvent(order *models.BeerOrder) payloads.BeerOrderCreatedEvent {
	lines := make([]payloads.BeerOrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, payloads.BeerOrderLine{
			LineID:        line.ID,
			BeerID:        line.BeerID,
			OrderQuantity: line.OrderQuantity,
		})
	}
	return payloads.BeerOrderCreatedEvent{
		OrderID:       order.ID,
		CustomerRef:   order.CustomerRef,
		PaymentAmount: order.PaymentAmount,
		Status:        string(order.Status),
		Lines:         lines,
	}
}

func lookupError(err error, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(resourceOrder, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load beer order")
}
