package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	"github.com/angelmondragon/brewhouse-backend/pkg/pagination"
)

// DefaultPageSize applies to order listings when no size is requested.
const DefaultPageSize = 10

// CreateOrderInput is the validated payload for a new order.
type CreateOrderInput struct {
	CustomerRef   *string
	PaymentAmount decimal.Decimal
	Items         []OrderItemInput
}

// OrderItemInput requests quantity units of one beer.
type OrderItemInput struct {
	BeerID   int64
	Quantity int
}

// OrderDTO is the full aggregate returned by GetOrder.
type OrderDTO struct {
	OrderSummaryDTO
	Lines []OrderLineDTO `json:"beerOrderLines"`
}

// OrderSummaryDTO is an order without its lines, used by listings.
type OrderSummaryDTO struct {
	ID            int64                 `json:"id"`
	Version       int64                 `json:"version"`
	CustomerRef   *string               `json:"customerRef,omitempty"`
	PaymentAmount decimal.Decimal       `json:"paymentAmount"`
	Status        enums.BeerOrderStatus `json:"status"`
	CreatedDate   time.Time             `json:"createdDate"`
	UpdatedDate   time.Time             `json:"updatedDate"`
}

// OrderLineDTO is one line with the name of the beer it references.
type OrderLineDTO struct {
	ID                int64                 `json:"id"`
	BeerID            int64                 `json:"beerId"`
	BeerName          string                `json:"beerName"`
	OrderQuantity     int                   `json:"orderQuantity"`
	QuantityAllocated int                   `json:"quantityAllocated"`
	Status            enums.OrderLineStatus `json:"status"`
}

// OrderPage is one page of order summaries.
type OrderPage = pagination.Page[OrderSummaryDTO]

func NewOrderSummaryDTO(order *models.BeerOrder) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:            order.ID,
		Version:       order.Version,
		CustomerRef:   order.CustomerRef,
		PaymentAmount: order.PaymentAmount,
		Status:        order.Status,
		CreatedDate:   order.CreatedDate,
		UpdatedDate:   order.UpdatedDate,
	}
}

func NewOrderDTO(order *models.BeerOrder) *OrderDTO {
	dto := &OrderDTO{
		OrderSummaryDTO: NewOrderSummaryDTO(order),
		Lines:           make([]OrderLineDTO, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		item := OrderLineDTO{
			ID:                line.ID,
			BeerID:            line.BeerID,
			OrderQuantity:     line.OrderQuantity,
			QuantityAllocated: line.QuantityAllocated,
			Status:            line.Status,
		}
		if line.Beer != nil {
			item.BeerName = line.Beer.BeerName
		}
		dto.Lines = append(dto.Lines, item)
	}
	return dto
}

var sortColumns = map[string]string{
	"id":            "id",
	"customerRef":   "customer_ref",
	"paymentAmount": "payment_amount",
	"status":        "status",
	"createdDate":   "created_date",
	"updatedDate":   "updated_date",
}
