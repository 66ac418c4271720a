package shipments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/internal/repo"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/payloads"
)

const (
	resourceShipment = "shipment"
	resourceOrder    = "beer_order"
)

// Service manages shipments scoped to their order.
type Service interface {
	CreateShipment(ctx context.Context, orderID int64, input CreateShipmentInput) (*ShipmentDTO, error)
	GetShipment(ctx context.Context, orderID, id int64) (*ShipmentDTO, error)
	ListShipments(ctx context.Context, orderID int64) ([]ShipmentDTO, error)
	UpdateShipment(ctx context.Context, orderID, id int64, input UpdateShipmentInput) error
	DeleteShipment(ctx context.Context, orderID, id int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type transitionMetrics interface {
	IncShipmentTransition(status string)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics transitionMetrics
	rules   Rules
	logg    *logger.Logger
}

// NewService constructs the shipment service.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, metrics transitionMetrics, rules Rules, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if metrics == nil {
		return nil, fmt.Errorf("shipment metrics required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rules.Now == nil {
		rules.Now = time.Now
	}
	return &service{repo: repo, tx: tx, outbox: outbox, metrics: metrics, rules: rules, logg: logg}, nil
}

func (s *service) CreateShipment(ctx context.Context, orderID int64, input CreateShipmentInput) (*ShipmentDTO, error) {
	if input.BeerOrderID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "beerOrderId does not match the order in the path").
			WithDetails(map[string]string{"beerOrderId": fmt.Sprintf("must equal %d", orderID)})
	}
	if input.ShipmentStatus != "" && !input.ShipmentStatus.IsValid() {
		return nil, invalidStatus(input.ShipmentStatus)
	}

	shipment := &models.BeerOrderShipment{
		BeerOrderID:    orderID,
		ShipmentStatus: input.ShipmentStatus,
		ShippedDate:    input.ShippedDate,
		TrackingNumber: input.TrackingNumber,
		Carrier:        input.Carrier,
		Notes:          input.Notes,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureOrder(ctx, repo, orderID); err != nil {
			return err
		}
		if err := s.rules.Apply(shipment); err != nil {
			return err
		}
		if err := repo.Create(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert shipment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentCreated,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Data:          shipmentEvent(shipment, ""),
		})
	})
	if err != nil {
		return nil, wrapTxError(err, "create shipment")
	}

	s.metrics.IncShipmentTransition(shipment.ShipmentStatus.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"resource":        resourceShipment,
		"resource_id":     shipment.ID,
		"order_id":        orderID,
		"shipment_status": shipment.ShipmentStatus,
	}), "shipment created")
	dto := NewShipmentDTO(shipment)
	return &dto, nil
}

func (s *service) GetShipment(ctx context.Context, orderID, id int64) (*ShipmentDTO, error) {
	shipment, err := findOwned(ctx, s.repo, orderID, id)
	if err != nil {
		return nil, err
	}
	dto := NewShipmentDTO(shipment)
	return &dto, nil
}

func (s *service) ListShipments(ctx context.Context, orderID int64) ([]ShipmentDTO, error) {
	if err := ensureOrder(ctx, s.repo, orderID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list shipments")
	}
	out := make([]ShipmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewShipmentDTO(&rows[i]))
	}
	return out, nil
}

// UpdateShipment merges the supplied fields, re-applies the rules to the
// merged entity and writes it under a version compare-and-swap. Any failure
// leaves the stored row as it was.
func (s *service) UpdateShipment(ctx context.Context, orderID, id int64, input UpdateShipmentInput) error {
	if input.ShipmentStatus != nil && !input.ShipmentStatus.IsValid() {
		return invalidStatus(*input.ShipmentStatus)
	}

	var merged *models.BeerOrderShipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := findOwned(ctx, repo, orderID, id)
		if err != nil {
			return err
		}
		previous := current.ShipmentStatus
		expected := current.Version
		if input.Version != nil {
			expected = *input.Version
		}

		input.mergeInto(current)
		if err := s.rules.Apply(current); err != nil {
			return err
		}

		version, err := repo.Update(ctx, id, expected, columnsOf(current))
		if err != nil {
			return updateError(err, id, expected)
		}
		current.Version = version
		merged = current

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentUpdated,
			AggregateType: enums.AggregateShipment,
			AggregateID:   id,
			Data:          shipmentEvent(current, previous),
		})
	})
	if err != nil {
		return wrapTxError(err, "update shipment")
	}

	s.metrics.IncShipmentTransition(merged.ShipmentStatus.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"resource":        resourceShipment,
		"resource_id":     id,
		"order_id":        orderID,
		"shipment_status": merged.ShipmentStatus,
	}), "shipment updated")
	return nil
}

// DeleteShipment removes the shipment; the order is left untouched.
func (s *service) DeleteShipment(ctx context.Context, orderID, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := findOwned(ctx, repo, orderID, id); err != nil {
			return err
		}
		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete shipment")
		}
		if !deleted {
			return pkgerrors.NotFound(resourceShipment, id)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShipmentDeleted,
			AggregateType: enums.AggregateShipment,
			AggregateID:   id,
			Data: payloads.ShipmentDeletedEvent{
				ShipmentID:  id,
				BeerOrderID: orderID,
				DeletedAt:   s.rules.Now().UTC(),
			},
		})
	})
	if err != nil {
		return wrapTxError(err, "delete shipment")
	}
	s.logg.Info(s.logg.WithResource(ctx, resourceShipment, id), "shipment deleted")
	return nil
}

func ensureOrder(ctx context.Context, repo Repository, orderID int64) error {
	exists, err := repo.OrderExists(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check beer order")
	}
	if !exists {
		return pkgerrors.NotFound(resourceOrder, orderID)
	}
	return nil
}

// findOwned loads a shipment and treats one filed under another order as
// missing.
func findOwned(ctx context.Context, repo Repository, orderID, id int64) (*models.BeerOrderShipment, error) {
	shipment, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(resourceShipment, id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load shipment")
	}
	if shipment.BeerOrderID != orderID {
		return nil, pkgerrors.NotFound(resourceShipment, id)
	}
	return shipment, nil
}

func updateError(err error, id, expected int64) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.NotFound(resourceShipment, id)
	case errors.Is(err, repo.ErrStaleVersion):
		return pkgerrors.New(pkgerrors.CodeOptimisticLock, fmt.Sprintf("shipment %d was modified concurrently", id)).
			WithDetails(map[string]any{"resource": resourceShipment, "id": id, "expectedVersion": expected})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update shipment")
}

func invalidStatus(status enums.ShipmentStatus) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"shipmentStatus": fmt.Sprintf("unknown status %q", status)})
}

func wrapTxError(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func shipmentEvent(shipment *models.BeerOrderShipment, previous enums.ShipmentStatus) payloads.ShipmentEvent {
	return payloads.ShipmentEvent{
		ShipmentID:     shipment.ID,
		BeerOrderID:    shipment.BeerOrderID,
		ShipmentStatus: shipment.ShipmentStatus,
		PreviousStatus: previous,
		ShippedDate:    shipment.ShippedDate,
		TrackingNumber: shipment.TrackingNumber,
		Carrier:        shipment.Carrier,
		Version:        shipment.Version,
	}
}
