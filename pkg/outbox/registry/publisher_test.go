package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	tracking := "1Z999"
	payloadBytes := mustMarshal(t, payloads.ShipmentEvent{
		ShipmentID:     9,
		BeerOrderID:    4,
		ShipmentStatus: enums.ShipmentStatusInTransit,
		TrackingNumber: &tracking,
	})

	event := models.OutboxEvent{
		EventType:     enums.EventShipmentUpdated,
		AggregateType: enums.AggregateShipment,
		AggregateID:   9,
		Payload:       mustEnvelope(t, 1, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "events-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.ShipmentEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.BeerOrderID != 4 || payload.ShipmentStatus != enums.ShipmentStatusInTransit || *payload.TrackingNumber != tracking {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" || resolved.Envelope.OccurredAt.IsZero() {
		t.Fatalf("envelope missing metadata: %+v", resolved.Envelope)
	}
}

func TestEventRegistryCoversEveryEventType(t *testing.T) {
	reg := newTestEventRegistry(t)
	for _, eventType := range []enums.OutboxEventType{
		enums.EventBeerOrderCreated,
		enums.EventBeerOrderDeleted,
		enums.EventShipmentCreated,
		enums.EventShipmentUpdated,
		enums.EventShipmentDeleted,
	} {
		desc, ok := reg.Descriptor(eventType)
		if !ok {
			t.Fatalf("missing descriptor for %s", eventType)
		}
		if !desc.AggregateType.IsValid() {
			t.Fatalf("descriptor for %s has invalid aggregate %q", eventType, desc.AggregateType)
		}
	}
}

func TestEventRegistryResolveFailuresAreNonRetryable(t *testing.T) {
	reg := newTestEventRegistry(t)
	validPayload := mustMarshal(t, payloads.BeerOrderDeletedEvent{OrderID: 1, DeletedAt: time.Now()})

	cases := []struct {
		name  string
		event models.OutboxEvent
	}{
		{
			name: "unknown event",
			event: models.OutboxEvent{
				EventType:     enums.OutboxEventType("order_paid"),
				AggregateType: enums.AggregateBeerOrder,
				AggregateID:   1,
				Payload:       mustEnvelope(t, 1, validPayload),
			},
		},
		{
			name: "aggregate mismatch",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateShipment,
				AggregateID:   1,
				Payload:       mustEnvelope(t, 1, validPayload),
			},
		},
		{
			name: "missing aggregate id",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateBeerOrder,
				Payload:       mustEnvelope(t, 1, validPayload),
			},
		},
		{
			name: "null payload",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateBeerOrder,
				AggregateID:   1,
				Payload:       mustEnvelope(t, 1, []byte("null")),
			},
		},
		{
			name: "unknown version",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateBeerOrder,
				AggregateID:   1,
				Payload:       mustEnvelope(t, 7, validPayload),
			},
		},
		{
			name: "corrupt envelope",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateBeerOrder,
				AggregateID:   1,
				Payload:       json.RawMessage(`{"version":`),
			},
		},
		{
			name: "payload shape mismatch",
			event: models.OutboxEvent{
				EventType:     enums.EventBeerOrderDeleted,
				AggregateType: enums.AggregateBeerOrder,
				AggregateID:   1,
				Payload:       mustEnvelope(t, 1, []byte(`{"order_id":"not-a-number"}`)),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Resolve(tc.event)
			if err == nil {
				t.Fatalf("expected error")
			}
			var nonRetry NonRetryableError
			if !errors.As(err, &nonRetry) {
				t.Fatalf("expected non-retryable error, got %T", err)
			}
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatalf("expected missing topic error")
	}
}

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventShipmentDeleted, 1, JSONDecoder[payloads.ShipmentDeletedEvent]())

	output, err := reg.Decode(enums.EventShipmentDeleted, 1, json.RawMessage(`{"shipment_id":3,"beer_order_id":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, ok := output.(*payloads.ShipmentDeletedEvent)
	if !ok || decoded.ShipmentID != 3 || decoded.BeerOrderID != 2 {
		t.Fatalf("unexpected output %+v", output)
	}
	if _, err := reg.Decode(enums.EventShipmentDeleted, 2, nil); err == nil {
		t.Fatalf("expected unregistered version error")
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{EventsTopic: "events-topic"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, version int, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    version,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
