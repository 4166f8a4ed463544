package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
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

type eventRouter interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

// publisher is the slice of *pubsub.Publisher the relay uses. Messages carry
// the order id as ordering key, so a failed publish pauses that key until
// ResumePublish.
type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Router           eventRouter
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Metrics          *metrics.OutboxMetrics
}

// Service relays outbox_events to Pub/Sub. Rows are marked published only
// after the broker acknowledges them, so delivery is at least once, and the
// events of one order reach the broker in creation order.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	pubsub       pubSubClient
	router       eventRouter
	dlq          dlqRepository
	publishers   *topicPublishers
	metrics      *metrics.OutboxMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
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
	case params.Router == nil:
		return nil, errors.New("event router is required")
	case params.DLQRepository == nil:
		return nil, errors.New("dlq repository is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return newGCPPublisher(params.PubSub.Publisher(topic))
		}
	}

	cfg := params.Config.Outbox
	svc := &Service{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		pubsub:       params.PubSub,
		router:       params.Router,
		dlq:          params.DLQRepository,
		publishers:   newTopicPublishers(factory),
		metrics:      params.Metrics,
		batchSize:    orDefault(cfg.BatchSize, defaultBatchSize),
		maxAttempts:  orDefault(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
	if svc.pollInterval <= 0 {
		svc.pollInterval = defaultPollInterval
	}
	return svc, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Run polls until ctx is cancelled. A failed batch backs off exponentially up
// to maxBackoff; an empty poll sleeps one interval; a non-empty one polls
// again immediately.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping failed: %w", err)
	}
	defer s.publishers.stop()

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		processed, err := s.processBatch(ctx)
		wait := s.pollInterval
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			wait = backoff
		case processed:
			backoff = s.pollInterval
			continue
		default:
			backoff = s.pollInterval
		}
		if err := sleep(ctx, withJitter(wait)); err != nil {
			return err
		}
	}
}

// inflight is one row of a batch between Publish and settlement.
type inflight struct {
	event    models.OutboxEvent
	resolved *registry.ResolvedEvent
	result   publishResult
	fields   map[string]any
}

// processBatch claims up to batchSize rows under SKIP LOCKED, publishes them
// all before waiting on any result, and settles each row in the same
// transaction.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events) > 0

		publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
		defer cancel()

		batch := make([]*inflight, 0, len(events))
		for _, event := range events {
			resolved, err := s.router.Resolve(event)
			if err != nil {
				if err := s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonUndecodable, err, s.eventFields(event, nil)); err != nil {
					return err
				}
				continue
			}
			batch = append(batch, s.startPublish(publishCtx, event, resolved))
		}

		blocked := map[orderingSlot]bool{}
		for _, f := range batch {
			if err := s.settle(ctx, publishCtx, tx, f, blocked); err != nil {
				return err
			}
		}
		for slot := range blocked {
			if pub := s.publishers.get(slot.topic); pub != nil {
				pub.ResumePublish(slot.key)
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) startPublish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) *inflight {
	f := &inflight{event: event, resolved: resolved, fields: s.eventFields(event, resolved)}
	pub := s.publishers.get(resolved.Route.Topic)
	if pub == nil {
		return f
	}
	f.result = pub.Publish(ctx, &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: orderingKey(event),
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"event_version":  strconv.Itoa(resolved.Envelope.Version),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	return f
}

// settle records the outcome of one publish. Once a row of an order fails,
// later rows of the same order in the batch are left untouched so they are
// retried after it, in order.
func (s *Service) settle(ctx, publishCtx context.Context, tx *gorm.DB, f *inflight, blocked map[orderingSlot]bool) error {
	event := f.event
	topic := f.resolved.Route.Topic
	key := orderingSlot{topic: topic, key: orderingKey(event)}

	if blocked[key] {
		if f.result != nil {
			_, _ = f.result.Get(publishCtx)
		}
		s.metrics.IncDeferred(string(event.EventType))
		s.logg.Debug(s.logg.WithFields(ctx, f.fields), "outbox event deferred behind failed predecessor")
		return nil
	}

	var publishErr error
	if f.result == nil {
		publishErr = registry.Permanent(fmt.Errorf("no publisher for topic %s", topic))
	} else if _, err := f.result.Get(publishCtx); err != nil {
		publishErr = classifyPublishError(err)
	}

	if publishErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType), topic)
		s.logg.Info(s.logg.WithFields(ctx, f.fields), "outbox event published")
		return nil
	}

	blocked[key] = true
	if registry.IsPermanent(publishErr) {
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonRejected, publishErr, f.fields)
	}

	attempt := event.AttemptCount + 1
	f.fields["attempt_count"] = attempt
	if attempt >= s.maxAttempts {
		return s.deadLetter(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("max publish attempts reached: %w", publishErr), f.fields)
	}

	s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, f.fields), "error", publishErr.Error()), "outbox publish failed, will retry")
	if err := s.repo.MarkFailedTx(tx, event.ID, publishErr); err != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	s.metrics.IncRetried(string(event.EventType))
	return nil
}

// classifyPublishError treats messages the broker refuses on their own merits
// as permanent. Everything else, including missing topics and permissions,
// is retried so an operator can fix it.
func classifyPublishError(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return registry.Permanent(err)
	}
	return err
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, err error, fields map[string]any) error {
	fields["error_reason"] = reason
	s.logg.Warn(s.logg.WithField(s.logg.WithFields(ctx, fields), "error", err.Error()), "outbox event moved to dead letters")

	entry := outbox.DeadLetterFor(event, reason, err, time.Now())
	if dlqErr := s.dlq.InsertTx(tx, entry); dlqErr != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, dlqErr)
	}
	if markErr := s.repo.MarkTerminalTx(tx, event.ID, err, s.maxAttempts); markErr != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, markErr)
	}
	s.metrics.IncDeadLettered(string(event.EventType), string(reason))
	return nil
}

func (s *Service) eventFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"order_id":       event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if resolved != nil {
		fields["topic"] = resolved.Route.Topic
		fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func orderingKey(event models.OutboxEvent) string {
	return event.AggregateID.String()
}

// orderingSlot is a paused (topic, ordering key) pair.
type orderingSlot struct {
	topic string
	key   string
}

func sleep(ctx context.Context, d time.Duration) error {
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

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, ceiling)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

// topicPublishers keeps one publisher per topic for the life of the process.
// Each GCP publisher owns a bundler and goroutines, so they are built lazily
// and stopped on shutdown.
type topicPublishers struct {
	mu      sync.Mutex
	factory publisherFactory
	byTopic map[string]publisher
}

func newTopicPublishers(factory publisherFactory) *topicPublishers {
	return &topicPublishers{factory: factory, byTopic: make(map[string]publisher)}
}

func (p *topicPublishers) get(topic string) publisher {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pub, ok := p.byTopic[topic]; ok {
		return pub
	}
	pub := p.factory(topic)
	if pub == nil {
		return nil
	}
	p.byTopic[topic] = pub
	return pub
}

func (p *topicPublishers) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for topic, pub := range p.byTopic {
		if s, ok := pub.(interface{ Stop() }); ok {
			s.Stop()
		}
		delete(p.byTopic, topic)
	}
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	p.EnableMessageOrdering = true
	return gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
