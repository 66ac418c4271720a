package orders

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewhouse-backend/api/responses"
	"github.com/angelmondragon/brewhouse-backend/api/validators"
	"github.com/angelmondragon/brewhouse-backend/internal/orders"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const orderIDParam = "id"

type createOrderRequest struct {
	CustomerRef   *string            `json:"customerRef,omitempty" validate:"omitempty,max=255"`
	PaymentAmount *decimal.Decimal   `json:"paymentAmount" validate:"required,gte=0"`
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderItemRequest struct {
	BeerID   *int64 `json:"beerId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

func (r createOrderRequest) toInput() orders.CreateOrderInput {
	items := make([]orders.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, orders.OrderItemInput{BeerID: *item.BeerID, Quantity: item.Quantity})
	}
	return orders.CreateOrderInput{
		CustomerRef:   validators.SanitizeOptional(r.CustomerRef, 255),
		PaymentAmount: *r.PaymentAmount,
		Items:         items,
	}
}

func orderLocation(id int64) string {
	return fmt.Sprintf("/api/v1/beer-orders/%d", id)
}

// ListOrders returns a page of order summaries without lines.
func ListOrders(svc orders.Service, maxPageSize int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r, maxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListOrders(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CreateOrder places an order and answers with the stored aggregate. If the
// order commits but cannot be read back, only the Location is returned.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.CreateOrder(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			if logg != nil {
				logg.WarnErr(logg.WithResource(r.Context(), "beer_order", id), "created order reload failed", err)
			}
			w.Header().Set("Location", orderLocation(id))
			w.WriteHeader(http.StatusCreated)
			return
		}

		responses.WriteCreated(w, orderLocation(id), order)
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, orderIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
