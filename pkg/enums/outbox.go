package enums

import "slices"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateBeerOrder OutboxAggregateType = "beer_order"
	AggregateShipment  OutboxAggregateType = "shipment"
)

func (a OutboxAggregateType) String() string { return string(a) }

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateBeerOrder || a == AggregateShipment
}

// OutboxEventType names a domain event carried by the outbox.
type OutboxEventType string

const (
	EventBeerOrderCreated OutboxEventType = "beer_order_created"
	EventBeerOrderDeleted OutboxEventType = "beer_order_deleted"
	EventShipmentCreated  OutboxEventType = "shipment_created"
	EventShipmentUpdated  OutboxEventType = "shipment_updated"
	EventShipmentDeleted  OutboxEventType = "shipment_deleted"
)

var eventAggregates = map[OutboxEventType]OutboxAggregateType{
	EventBeerOrderCreated: AggregateBeerOrder,
	EventBeerOrderDeleted: AggregateBeerOrder,
	EventShipmentCreated:  AggregateShipment,
	EventShipmentUpdated:  AggregateShipment,
	EventShipmentDeleted:  AggregateShipment,
}

func (e OutboxEventType) String() string { return string(e) }

func (e OutboxEventType) IsValid() bool {
	_, ok := eventAggregates[e]
	return ok
}

// Aggregate returns the aggregate type that owns events of this type, or
// the empty string for unknown types.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	return eventAggregates[e]
}

// OutboxEventTypes lists every known event type in a stable order.
func OutboxEventTypes() []OutboxEventType {
	types := make([]OutboxEventType, 0, len(eventAggregates))
	for eventType := range eventAggregates {
		types = append(types, eventType)
	}
	slices.Sort(types)
	return types
}

// OutboxDLQErrorReason records why a row was moved to outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
