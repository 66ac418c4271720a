package shipments

import (
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
)

// ShipmentDTO is the shipment payload returned to clients.
type ShipmentDTO struct {
	ID             int64                `json:"id"`
	Version        int64                `json:"version"`
	BeerOrderID    int64                `json:"beerOrderId"`
	ShipmentStatus enums.ShipmentStatus `json:"shipmentStatus"`
	ShippedDate    *time.Time           `json:"shippedDate,omitempty"`
	TrackingNumber *string              `json:"trackingNumber,omitempty"`
	Carrier        *string              `json:"carrier,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
	CreatedDate    time.Time            `json:"createdDate"`
	UpdatedDate    time.Time            `json:"updatedDate"`
}

// CreateShipmentInput describes a new shipment. An empty status means
// PENDING.
type CreateShipmentInput struct {
	BeerOrderID    int64
	ShipmentStatus enums.ShipmentStatus
	ShippedDate    *time.Time
	TrackingNumber *string
	Carrier        *string
	Notes          *string
}

// UpdateShipmentInput is a partial update; nil fields keep their stored
// value. Version, when set, is the version the caller last read.
type UpdateShipmentInput struct {
	ShipmentStatus *enums.ShipmentStatus
	ShippedDate    *time.Time
	TrackingNumber *string
	Carrier        *string
	Notes          *string
	Version        *int64
}

func (in UpdateShipmentInput) mergeInto(shipment *models.BeerOrderShipment) {
	if in.ShipmentStatus != nil {
		shipment.ShipmentStatus = *in.ShipmentStatus
	}
	if in.ShippedDate != nil {
		shipped := *in.ShippedDate
		shipment.ShippedDate = &shipped
	}
	if in.TrackingNumber != nil {
		shipment.TrackingNumber = in.TrackingNumber
	}
	if in.Carrier != nil {
		shipment.Carrier = in.Carrier
	}
	if in.Notes != nil {
		shipment.Notes = in.Notes
	}
}

func columnsOf(shipment *models.BeerOrderShipment) map[string]any {
	return map[string]any{
		"shipment_status": shipment.ShipmentStatus,
		"shipped_date":    shipment.ShippedDate,
		"tracking_number": shipment.TrackingNumber,
		"carrier":         shipment.Carrier,
		"notes":           shipment.Notes,
	}
}

func NewShipmentDTO(s *models.BeerOrderShipment) ShipmentDTO {
	return ShipmentDTO{
		ID:             s.ID,
		Version:        s.Version,
		BeerOrderID:    s.BeerOrderID,
		ShipmentStatus: s.ShipmentStatus,
		ShippedDate:    s.ShippedDate,
		TrackingNumber: s.TrackingNumber,
		Carrier:        s.Carrier,
		Notes:          s.Notes,
		CreatedDate:    s.CreatedDate,
		UpdatedDate:    s.UpdatedDate,
	}
}
