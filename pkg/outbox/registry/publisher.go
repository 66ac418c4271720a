package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate and topic.
type EventDescriptor struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    any
}

// EventRegistry maps each supported event type to its descriptor and
// versioned payload decoders.
type EventRegistry struct {
	entries  map[enums.OutboxEventType]EventDescriptor
	decoders *DecoderRegistry
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic name.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("events topic is required")
	}
	reg := &EventRegistry{
		entries:  make(map[enums.OutboxEventType]EventDescriptor),
		decoders: NewDecoderRegistry(),
	}
	topic := cfg.EventsTopic

	reg.register(EventDescriptor{EventType: enums.EventBeerOrderCreated, AggregateType: enums.AggregateBeerOrder, Topic: topic},
		outbox.CurrentVersion, JSONDecoder[payloads.BeerOrderCreatedEvent]())
	reg.register(EventDescriptor{EventType: enums.EventBeerOrderDeleted, AggregateType: enums.AggregateBeerOrder, Topic: topic},
		outbox.CurrentVersion, JSONDecoder[payloads.BeerOrderDeletedEvent]())
	for _, eventType := range []enums.OutboxEventType{enums.EventShipmentCreated, enums.EventShipmentUpdated} {
		reg.register(EventDescriptor{EventType: eventType, AggregateType: enums.AggregateShipment, Topic: topic},
			outbox.CurrentVersion, JSONDecoder[payloads.ShipmentEvent]())
	}
	reg.register(EventDescriptor{EventType: enums.EventShipmentDeleted, AggregateType: enums.AggregateShipment, Topic: topic},
		outbox.CurrentVersion, JSONDecoder[payloads.ShipmentDeletedEvent]())

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor, version int, decoder decoderFunc) {
	r.entries[desc.EventType] = desc
	r.decoders.Register(desc.EventType, version, decoder)
}

// Descriptor returns the descriptor registered for eventType.
func (r *EventRegistry) Descriptor(eventType enums.OutboxEventType) (EventDescriptor, bool) {
	desc, ok := r.entries[eventType]
	return desc, ok
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID <= 0 {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	if !r.decoders.Has(event.EventType, envelope.Version) {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported %s payload version %d", event.EventType, envelope.Version))
	}
	payload, err := r.decoders.Decode(event.EventType, envelope.Version, envelope.Data)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
