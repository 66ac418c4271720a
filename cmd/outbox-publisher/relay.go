package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/brewhouse-backend/pkg/config"
	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	"github.com/angelmondragon/brewhouse-backend/pkg/logger"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox"
	"github.com/angelmondragon/brewhouse-backend/pkg/outbox/registry"
)

const (
	fallbackBatchSize      = 50
	fallbackPollInterval   = 500 * time.Millisecond
	fallbackMaxAttempts    = 10
	fallbackPublishTimeout = 15 * time.Second
	fallbackMaxBackoff     = 10 * time.Second
	jitterWindow           = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type relayMetrics interface {
	IncPublished(eventType string)
	IncFailed(eventType string)
}

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// publisherLookup returns nil when no publisher exists for topic.
type publisherLookup func(topic string) publisher

type RelayParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            dbClient
	PubSub        pubSubClient
	Repository    outboxRepository
	DLQRepository dlqRepository
	Registry      eventResolver
	Metrics       relayMetrics
	Publishers    publisherLookup
}

// Relay moves committed outbox rows to Pub/Sub. Each batch runs in one
// transaction so row locks are held until every row in it is settled.
type Relay struct {
	logg       *logger.Logger
	db         dbClient
	pubsub     pubSubClient
	repo       outboxRepository
	dlq        dlqRepository
	registry   eventResolver
	metrics    relayMetrics
	publishers publisherLookup

	batchSize      int
	maxAttempts    int
	pollInterval   time.Duration
	publishTimeout time.Duration
	maxBackoff     time.Duration
}

func NewRelay(params RelayParams) (*Relay, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.DLQRepository == nil:
		return nil, errors.New("dlq repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	r := &Relay{
		logg:       params.Logger,
		db:         params.DB,
		pubsub:     params.PubSub,
		repo:       params.Repository,
		dlq:        params.DLQRepository,
		registry:   params.Registry,
		metrics:    params.Metrics,
		publishers: params.Publishers,
	}
	if r.metrics == nil {
		r.metrics = discardMetrics{}
	}
	if r.publishers == nil {
		r.publishers = pubSubPublishers(params.PubSub)
	}

	cfg := params.Config.Outbox
	r.batchSize = positiveOr(cfg.BatchSize, fallbackBatchSize)
	r.maxAttempts = positiveOr(cfg.MaxAttempts, fallbackMaxAttempts)
	r.pollInterval = durationOr(time.Duration(cfg.PollIntervalMS)*time.Millisecond, fallbackPollInterval)
	r.publishTimeout = durationOr(cfg.PublishTimeout, fallbackPublishTimeout)
	r.maxBackoff = durationOr(cfg.MaxBackoff, fallbackMaxBackoff)
	return r, nil
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// the next one; an empty batch waits one poll interval; a failed batch
// backs off exponentially.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.checkDependencies(ctx); err != nil {
		return err
	}

	retry := backoff{base: r.pollInterval, max: r.maxBackoff}
	for {
		if err := ctx.Err(); err != nil {
			r.logg.Info(ctx, "outbox relay stopping")
			return err
		}

		handled, err := r.drainOnce(ctx)
		var delay time.Duration
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox relay batch failed", err)
			delay = retry.next()
		case handled > 0:
			retry.reset()
			continue
		default:
			retry.reset()
			delay = r.pollInterval
		}

		if err := sleepContext(ctx, withJitter(delay)); err != nil {
			return err
		}
	}
}

func (r *Relay) checkDependencies(ctx context.Context) error {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{name: "database", ping: r.db.Ping},
		{name: "pubsub", ping: r.pubsub.Ping},
	}
	for _, check := range checks {
		if err := check.ping(ctx); err != nil {
			r.logg.Error(ctx, check.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", check.name, err)
		}
	}
	return nil
}

// drainOnce settles one batch and reports how many rows it handled.
func (r *Relay) drainOnce(ctx context.Context) (int, error) {
	handled := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := r.repo.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, event := range events {
			if err := r.settle(ctx, tx, event, r.dispatch(ctx, event)); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	return handled, err
}

type outcome int

const (
	outcomePublished outcome = iota
	outcomeRetry
	outcomeDeadLetter
)

type delivery struct {
	outcome  outcome
	reason   enums.OutboxDLQErrorReason
	topic    string
	envelope outbox.PayloadEnvelope
	err      error
}

func (r *Relay) dispatch(ctx context.Context, event models.OutboxEvent) delivery {
	resolved, err := r.registry.Resolve(event)
	if err != nil {
		return delivery{outcome: outcomeDeadLetter, reason: enums.OutboxDLQReasonNonRetryable, err: err}
	}

	d := delivery{topic: resolved.Descriptor.Topic, envelope: resolved.Envelope}
	err = r.publish(ctx, event, resolved)

	var nonRetryable registry.NonRetryableError
	switch {
	case err == nil:
		d.outcome = outcomePublished
	case errors.As(err, &nonRetryable):
		d.outcome, d.reason, d.err = outcomeDeadLetter, enums.OutboxDLQReasonNonRetryable, err
	case event.AttemptCount+1 >= r.maxAttempts:
		d.outcome, d.reason = outcomeDeadLetter, enums.OutboxDLQReasonMaxAttempts
		d.err = fmt.Errorf("max publish attempts reached: %w", err)
	default:
		d.outcome, d.err = outcomeRetry, err
	}
	return d
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := r.publishers(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, messageFor(event, resolved.Envelope))
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher for topic %s returned no result", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

// messageFor carries the stored envelope verbatim; attributes let
// subscribers filter without decoding the body.
func messageFor(event models.OutboxEvent, envelope outbox.PayloadEnvelope) *gcppubsub.Message {
	return &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   strconv.FormatInt(event.AggregateID, 10),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

func (r *Relay) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, d delivery) error {
	ctx = r.logg.WithFields(ctx, r.logFields(event, d))

	switch d.outcome {
	case outcomePublished:
		if err := r.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		r.metrics.IncPublished(string(event.EventType))
		r.logg.Info(ctx, "outbox event published")
		return nil

	case outcomeRetry:
		r.metrics.IncFailed(string(event.EventType))
		r.logg.Warn(r.logg.WithField(ctx, "error", d.err.Error()), "outbox publish failed, will retry")
		if err := r.repo.MarkFailedTx(tx, event.ID, d.err); err != nil {
			return fmt.Errorf("mark failed %s: %w", event.ID, err)
		}
		return nil
	}

	r.metrics.IncFailed(string(event.EventType))
	r.logg.Warn(r.logg.WithField(ctx, "error", d.err.Error()), "outbox event dead-lettered")
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   d.reason,
		ErrorMessage:  errorText(d.err),
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := r.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := r.repo.MarkTerminalTx(tx, event.ID, d.err, r.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (r *Relay) logFields(event models.OutboxEvent, d delivery) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID,
		"attempt_count":  event.AttemptCount,
	}
	if d.outcome == outcomeRetry {
		fields["attempt_count"] = event.AttemptCount + 1
	}
	if d.outcome == outcomeDeadLetter {
		fields["error_reason"] = d.reason
	}
	if d.topic != "" {
		fields["topic"] = d.topic
	}
	if d.envelope.EventID != "" {
		fields["event_id"] = d.envelope.EventID
		fields["occurred_at"] = d.envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	return fields
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}

type backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// next doubles the delay from base, capped at max.
func (b *backoff) next() time.Duration {
	if b.current <= 0 {
		b.current = b.base
	}
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return b.current
}

func (b *backoff) reset() { b.current = 0 }

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}

type discardMetrics struct{}

func (discardMetrics) IncPublished(string) {}
func (discardMetrics) IncFailed(string)    {}

func pubSubPublishers(client pubSubClient) publisherLookup {
	return func(topic string) publisher {
		p := client.Publisher(topic)
		if p == nil {
			return nil
		}
		return topicPublisher{p: p}
	}
}

type topicPublisher struct {
	p *gcppubsub.Publisher
}

func (t topicPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return t.p.Publish(ctx, msg)
}
