package payloads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
)

// BeerOrderLine is the line snapshot carried by BeerOrderCreatedEvent.
type BeerOrderLine struct {
	LineID        int64 `json:"line_id"`
	BeerID        int64 `json:"beer_id"`
	OrderQuantity int   `json:"order_quantity"`
}

// BeerOrderCreatedEvent is emitted once an order and its lines commit.
type BeerOrderCreatedEvent struct {
	OrderID       int64           `json:"order_id"`
	CustomerRef   *string         `json:"customer_ref,omitempty"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Status        string          `json:"status"`
	Lines         []BeerOrderLine `json:"lines"`
}

// BeerOrderDeletedEvent is emitted when an order and its lines are removed.
type BeerOrderDeletedEvent struct {
	OrderID   int64     `json:"order_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ShipmentEvent carries the persisted shipment state for create and update.
type ShipmentEvent struct {
	ShipmentID     int64                `json:"shipment_id"`
	BeerOrderID    int64                `json:"beer_order_id"`
	ShipmentStatus enums.ShipmentStatus `json:"shipment_status"`
	PreviousStatus enums.ShipmentStatus `json:"previous_status,omitempty"`
	ShippedDate    *time.Time           `json:"shipped_date,omitempty"`
	TrackingNumber *string              `json:"tracking_number,omitempty"`
	Carrier        *string              `json:"carrier,omitempty"`
	Version        int64                `json:"version"`
}

// ShipmentDeletedEvent is emitted when a shipment row is removed.
type ShipmentDeletedEvent struct {
	ShipmentID  int64     `json:"shipment_id"`
	BeerOrderID int64     `json:"beer_order_id"`
	DeletedAt   time.Time `json:"deleted_at"`
}
