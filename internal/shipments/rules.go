package shipments

import (
	"strings"
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
)

const trackingRuleMessage = "trackingNumber and carrier are required when status is IN_TRANSIT or later"

// Rules enforces shipment invariants on a fully merged entity.
type Rules struct {
	// CancelledExempt lifts the tracking requirement for CANCELLED shipments.
	CancelledExempt bool
	Now             func() time.Time
}

// Apply defaults a missing status to PENDING, then requires tracking number
// and carrier from IN_TRANSIT onward and stamps a missing shipped date.
// DELIVERED always ends up with a shipped date.
func (r Rules) Apply(shipment *models.BeerOrderShipment) error {
	if shipment.ShipmentStatus == "" {
		shipment.ShipmentStatus = enums.ShipmentStatusPending
	}
	status := shipment.ShipmentStatus

	if r.requiresTracking(status) {
		if isBlank(shipment.TrackingNumber) || isBlank(shipment.Carrier) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, trackingRuleMessage).
				WithDetails(map[string]string{
					"trackingNumber": "is required when status is " + string(status),
					"carrier":        "is required when status is " + string(status),
				})
		}
		r.stampShipped(shipment)
	}

	if status == enums.ShipmentStatusDelivered {
		r.stampShipped(shipment)
	}
	return nil
}

func (r Rules) requiresTracking(status enums.ShipmentStatus) bool {
	if status == enums.ShipmentStatusCancelled && r.CancelledExempt {
		return false
	}
	return status.AtOrAfter(enums.ShipmentStatusInTransit)
}

func (r Rules) stampShipped(shipment *models.BeerOrderShipment) {
	if shipment.ShippedDate != nil {
		return
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now().UTC()
	shipment.ShippedDate = &t
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
