package enums

import "fmt"

// ShipmentStatus tracks a beer order shipment through its lifecycle.
type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "PENDING"
	ShipmentStatusPacked         ShipmentStatus = "PACKED"
	ShipmentStatusInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentStatusDelivered      ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled      ShipmentStatus = "CANCELLED"
)

// validShipmentStatuses is ordered by progression rank.
var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusPacked,
	ShipmentStatusInTransit,
	ShipmentStatusOutForDelivery,
	ShipmentStatusDelivered,
	ShipmentStatusCancelled,
}

// ShipmentStatuses returns every status in rank order.
func ShipmentStatuses() []ShipmentStatus {
	out := make([]ShipmentStatus, len(validShipmentStatuses))
	copy(out, validShipmentStatuses)
	return out
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank is the position of the status in the progression, or -1 when unknown.
// CANCELLED ranks last.
func (s ShipmentStatus) Rank() int {
	for i, candidate := range validShipmentStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// AtOrAfter reports whether s ranks at or beyond other.
func (s ShipmentStatus) AtOrAfter(other ShipmentStatus) bool {
	rank := s.Rank()
	return rank >= 0 && rank >= other.Rank()
}

// ParseShipmentStatus converts raw input into a ShipmentStatus. Matching is
// case-exact; unknown values are rejected rather than defaulted.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
