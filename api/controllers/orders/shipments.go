package orders

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/brewhouse-backend/api/responses"
	"github.com/angelmondragon/brewhouse-backend/api/validators"
	"github.com/angelmondragon/brewhouse-backend/internal/shipments"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
)

const (
	shipmentOrderParam = "beerOrderId"
	shipmentIDParam    = "id"
)

type createShipmentRequest struct {
	BeerOrderID    *int64     `json:"beerOrderId" validate:"required,gt=0"`
	ShipmentStatus *string    `json:"shipmentStatus,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	TrackingNumber *string    `json:"trackingNumber,omitempty" validate:"omitempty,max=255"`
	Carrier        *string    `json:"carrier,omitempty" validate:"omitempty,max=255"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type updateShipmentRequest struct {
	Version        *int64     `json:"version,omitempty"`
	ShipmentStatus *string    `json:"shipmentStatus,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	TrackingNumber *string    `json:"trackingNumber,omitempty" validate:"omitempty,max=255"`
	Carrier        *string    `json:"carrier,omitempty" validate:"omitempty,max=255"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r createShipmentRequest) toInput() (shipments.CreateShipmentInput, error) {
	input := shipments.CreateShipmentInput{
		BeerOrderID:    *r.BeerOrderID,
		ShippedDate:    r.ShippedDate,
		TrackingNumber: validators.SanitizeOptional(r.TrackingNumber, 255),
		Carrier:        validators.SanitizeOptional(r.Carrier, 255),
		Notes:          validators.SanitizeOptional(r.Notes, 1000),
	}
	if r.ShipmentStatus != nil && strings.TrimSpace(*r.ShipmentStatus) != "" {
		status, err := parseStatus(*r.ShipmentStatus)
		if err != nil {
			return shipments.CreateShipmentInput{}, err
		}
		input.ShipmentStatus = status
	}
	return input, nil
}

func (r updateShipmentRequest) toInput() (shipments.UpdateShipmentInput, error) {
	input := shipments.UpdateShipmentInput{
		Version:        r.Version,
		ShippedDate:    r.ShippedDate,
		TrackingNumber: validators.SanitizeOptional(r.TrackingNumber, 255),
		Carrier:        validators.SanitizeOptional(r.Carrier, 255),
		Notes:          validators.SanitizeOptional(r.Notes, 1000),
	}
	if r.ShipmentStatus != nil {
		status, err := parseStatus(*r.ShipmentStatus)
		if err != nil {
			return shipments.UpdateShipmentInput{}, err
		}
		input.ShipmentStatus = &status
	}
	return input, nil
}

func parseStatus(raw string) (enums.ShipmentStatus, error) {
	status, err := enums.ParseShipmentStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status").
			WithDetails(map[string]string{"shipmentStatus": fmt.Sprintf("must be one of %v", enums.ShipmentStatuses())})
	}
	return status, nil
}

func shipmentPathIDs(r *http.Request) (int64, int64, error) {
	orderID, err := validators.ParsePathID(r, shipmentOrderParam)
	if err != nil {
		return 0, 0, err
	}
	id, err := validators.ParsePathID(r, shipmentIDParam)
	if err != nil {
		return 0, 0, err
	}
	return orderID, id, nil
}

// CreateShipment adds a shipment to the order in the path. The body's
// beerOrderId must name the same order.
func CreateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathID(r, shipmentOrderParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createShipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.CreateShipment(r.Context(), orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		location := fmt.Sprintf("/api/v1/beerorders/%d/shipments/%d", orderID, shipment.ID)
		responses.WriteCreated(w, location, shipment)
	}
}

func ListShipments(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathID(r, shipmentOrderParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListShipments(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func GetShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, id, err := shipmentPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.GetShipment(r.Context(), orderID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipment)
	}
}

// UpdateShipment applies a partial update and answers 204.
func UpdateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, id, err := shipmentPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateShipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateShipment(r.Context(), orderID, id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

func DeleteShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, id, err := shipmentPathIDs(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteShipment(r.Context(), orderID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}
