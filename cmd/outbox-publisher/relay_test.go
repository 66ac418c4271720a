package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/registry"
)

const testTopic = "brewhouse-events"

func TestDrainOnceRetriesTransientFailureAndContinues(t *testing.T) {
	first := orderCreatedRow(t, 1)
	second := orderCreatedRow(t, 2)
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{results: []error{errors.New("transient"), nil}}
	counters := &fakeMetrics{}
	relay := newTestRelay(t, repo, &fakeDLQRepo{}, &fakeRegistry{}, pub, counters, config.OutboxConfig{MaxAttempts: 5})

	handled, err := relay.drainOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, handled)
	assert.Equal(t, []uuid.UUID{first.ID}, repo.failed)
	assert.Equal(t, []uuid.UUID{second.ID}, repo.published)
	assert.Empty(t, repo.terminal)
	assert.Equal(t, 1, counters.published)
	assert.Equal(t, 1, counters.failed)
}

func TestDrainOnceEmptyBatch(t *testing.T) {
	relay := newTestRelay(t, &fakeRepo{}, &fakeDLQRepo{}, &fakeRegistry{}, &fakePublisher{}, nil, config.OutboxConfig{})

	handled, err := relay.drainOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, handled)
}

func TestDrainOnceFetchErrorIsReturned(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("connection reset")}
	relay := newTestRelay(t, repo, &fakeDLQRepo{}, &fakeRegistry{}, &fakePublisher{}, nil, config.OutboxConfig{})

	_, err := relay.drainOnce(context.Background())

	require.ErrorContains(t, err, "fetch outbox batch")
}

func TestMessageCarriesEnvelopeAndAttributes(t *testing.T) {
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventShipmentUpdated,
		AggregateType: enums.AggregateShipment,
		AggregateID:   42,
		Payload:       envelopeJSON(t, "shipment-updated"),
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{row}}
	pub := &fakePublisher{results: []error{nil}}
	relay := newTestRelay(t, repo, &fakeDLQRepo{}, &fakeRegistry{}, pub, nil, config.OutboxConfig{})

	_, err := relay.drainOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, pub.sent, 1)
	msg := pub.sent[0]
	assert.JSONEq(t, string(row.Payload), string(msg.Data))
	assert.Equal(t, map[string]string{
		"event_id":       row.ID.String(),
		"event_type":     "shipment_updated",
		"aggregate_type": "shipment",
		"aggregate_id":   "42",
		"created_at":     "2026-03-01T12:00:00Z",
	}, msg.Attributes)
	assert.Equal(t, []string{testTopic}, pub.topics)
}

func TestUnresolvableRowIsDeadLettered(t *testing.T) {
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventShipmentCreated,
		AggregateType: enums.AggregateShipment,
		AggregateID:   11,
		Payload:       envelopeJSON(t, "bad"),
		AttemptCount:  2,
	}
	repo := &fakeRepo{events: []models.OutboxEvent{row}}
	dlq := &fakeDLQRepo{}
	pub := &fakePublisher{}
	resolver := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	relay := newTestRelay(t, repo, dlq, resolver, pub, nil, config.OutboxConfig{})

	_, err := relay.drainOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, dlq.entries, 1)
	entry := dlq.entries[0]
	assert.Equal(t, row.ID, entry.EventID)
	assert.Equal(t, int64(11), entry.AggregateID)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, entry.ErrorReason)
	assert.Equal(t, 2, entry.AttemptCount)
	assert.JSONEq(t, string(row.Payload), string(entry.Payload))
	require.NotNil(t, entry.ErrorMessage)
	assert.Contains(t, *entry.ErrorMessage, "invalid payload")
	assert.Equal(t, []uuid.UUID{row.ID}, repo.terminal)
	assert.Empty(t, pub.sent)
}

func TestMissingPublisherIsDeadLettered(t *testing.T) {
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventBeerOrderDeleted,
		AggregateType: enums.AggregateBeerOrder,
		AggregateID:   7,
		Payload:       envelopeJSON(t, "deleted"),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{row}}
	dlq := &fakeDLQRepo{}
	relay := newTestRelay(t, repo, dlq, &fakeRegistry{}, nil, nil, config.OutboxConfig{})
	relay.publishers = func(string) publisher { return nil }

	_, err := relay.drainOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq.entries[0].ErrorReason)
	assert.Empty(t, repo.published)
}

func TestLastAttemptIsDeadLettered(t *testing.T) {
	row := orderCreatedRow(t, 3)
	row.AttemptCount = 1
	repo := &fakeRepo{events: []models.OutboxEvent{row}}
	dlq := &fakeDLQRepo{}
	pub := &fakePublisher{results: []error{errors.New("deadline exceeded")}}
	counters := &fakeMetrics{}
	relay := newTestRelay(t, repo, dlq, &fakeRegistry{}, pub, counters, config.OutboxConfig{MaxAttempts: 2})

	_, err := relay.drainOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq.entries[0].ErrorReason)
	assert.Contains(t, *dlq.entries[0].ErrorMessage, "max publish attempts reached")
	assert.Equal(t, []uuid.UUID{row.ID}, repo.terminal)
	assert.Empty(t, repo.failed)
	assert.Equal(t, 1, counters.failed)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	relay := newTestRelay(t, &fakeRepo{}, &fakeDLQRepo{}, &fakeRegistry{}, &fakePublisher{}, nil, config.OutboxConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := relay.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
}

func TestRunFailsWhenDependencyIsDown(t *testing.T) {
	relay := newTestRelay(t, &fakeRepo{}, &fakeDLQRepo{}, &fakeRegistry{}, &fakePublisher{}, nil, config.OutboxConfig{})
	relay.pubsub = &fakePubSubClient{pingErr: errors.New("topic missing")}

	err := relay.Run(context.Background())

	require.ErrorContains(t, err, "pubsub ping failed")
}

func TestNewRelayDefaults(t *testing.T) {
	relay := newTestRelay(t, &fakeRepo{}, &fakeDLQRepo{}, &fakeRegistry{}, &fakePublisher{}, nil, config.OutboxConfig{})

	assert.Equal(t, fallbackBatchSize, relay.batchSize)
	assert.Equal(t, fallbackMaxAttempts, relay.maxAttempts)
	assert.Equal(t, fallbackPollInterval, relay.pollInterval)
	assert.Equal(t, fallbackPublishTimeout, relay.publishTimeout)
	assert.Equal(t, fallbackMaxBackoff, relay.maxBackoff)
	assert.IsType(t, discardMetrics{}, relay.metrics)
}

func TestNewRelayRequiresDependencies(t *testing.T) {
	_, err := NewRelay(RelayParams{Config: &config.Config{}})
	require.ErrorContains(t, err, "logger is required")
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	b := backoff{base: time.Second, max: 5 * time.Second}

	assert.Equal(t, 2*time.Second, b.next())
	assert.Equal(t, 4*time.Second, b.next())
	assert.Equal(t, 5*time.Second, b.next())

	b.reset()
	assert.Equal(t, 2*time.Second, b.next())
}

func TestWithJitterStaysInWindow(t *testing.T) {
	assert.Zero(t, withJitter(0))
	for range 20 {
		got := withJitter(time.Second)
		assert.GreaterOrEqual(t, got, time.Second)
		assert.Less(t, got, time.Second+jitterWindow)
	}
}

func newTestRelay(t *testing.T, repo outboxRepository, dlq dlqRepository, resolver eventResolver, pub publisher, counters relayMetrics, outboxCfg config.OutboxConfig) *Relay {
	t.Helper()
	params := RelayParams{
		Config:        &config.Config{Outbox: outboxCfg},
		Logger:        logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:            fakeDB{},
		PubSub:        &fakePubSubClient{},
		Repository:    repo,
		DLQRepository: dlq,
		Registry:      resolver,
		Metrics:       counters,
		Publishers:    func(string) publisher { return pub },
	}
	if fp, ok := pub.(*fakePublisher); ok && fp != nil {
		params.Publishers = func(topic string) publisher {
			fp.topics = append(fp.topics, topic)
			return fp
		}
	}
	relay, err := NewRelay(params)
	require.NoError(t, err)
	return relay
}

func orderCreatedRow(t *testing.T, aggregateID int64) models.OutboxEvent {
	t.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventBeerOrderCreated,
		AggregateType: enums.AggregateBeerOrder,
		AggregateID:   aggregateID,
		Payload:       envelopeJSON(t, uuid.NewString()),
	}
}

func envelopeJSON(t *testing.T, eventID string) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    outbox.CurrentVersion,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	return payload
}

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, f.fetchErr
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error { return fn(nil) }

type fakePubSubClient struct {
	pingErr error
}

func (f *fakePubSubClient) Ping(context.Context) error { return f.pingErr }

func (f *fakePubSubClient) Publisher(string) *gcppubsub.Publisher { return nil }

// fakeRegistry resolves every row onto testTopic using the row's own
// envelope unless err is set.
type fakeRegistry struct {
	err error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, registry.NewNonRetryableError(err)
	}
	envelope.EventID = event.ID.String()
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			Topic:         testTopic,
		},
		Envelope: envelope,
	}, nil
}

type fakePublisher struct {
	results []error
	sent    []*gcppubsub.Message
	topics  []string
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.sent = append(f.sent, msg)
	var err error
	if len(f.results) > 0 {
		err, f.results = f.results[0], f.results[1:]
	}
	return fakePublishResult{err: err}
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type fakeMetrics struct {
	published int
	failed    int
}

func (f *fakeMetrics) IncPublished(string) { f.published++ }
func (f *fakeMetrics) IncFailed(string)    { f.failed++ }
