package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
	"github.com/angelmondragon/storefront-orders/pkg/mailer"
	"github.com/angelmondragon/storefront-orders/pkg/metrics"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/idempotency"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/registry"
)

const orderEmailConsumer = "order-email"

type sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type processedTracker interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (idempotency.ClaimState, error)
	Complete(ctx context.Context, consumer string, eventID uuid.UUID) error
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns order_created events into confirmation emails.
type Consumer struct {
	sender       sender
	subscription *pubsub.Subscriber
	idempotency  processedTracker
	decoders     *registry.DecoderRegistry
	metrics      *metrics.NotificationMetrics
	logg         *logger.Logger
}

// NewConsumer builds the order email consumer.
func NewConsumer(sender sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, m *metrics.NotificationMetrics, logg *logger.Logger) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		decoders:     newDecoders(),
		metrics:      m,
		logg:         logg,
	}, nil
}

func newDecoders() *registry.DecoderRegistry {
	decoders := registry.NewDecoderRegistry()
	decoders.Register(enums.EventOrderCreated, 1, registry.JSONDecoder[payloads.OrderCreatedEvent]())
	return decoders
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	started := time.Now()
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	envelope, err := outbox.DecodeEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.metrics.Observe(eventType, "malformed", time.Since(started))
		return processResult{ack: true}
	}
	if eventType == "" {
		eventType = envelope.EventType
	}
	if eventType != string(enums.EventOrderCreated) {
		c.logg.Debug(logCtx, "skipping non order_created event")
		return processResult{ack: true}
	}

	// DecodeEnvelope has already validated the id.
	eventID, _ := envelope.EventUUID()

	state, err := c.idempotency.Claim(ctx, orderEmailConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency claim failed", err)
		return processResult{nack: true}
	}
	switch state {
	case idempotency.AlreadyDone:
		c.logg.Info(logCtx, "event already processed")
		c.metrics.Observe(eventType, "duplicate", time.Since(started))
		return processResult{ack: true}
	case idempotency.InFlight:
		c.logg.Debug(logCtx, "event claimed by another worker")
		return processResult{nack: true}
	}

	payload, err := registry.DecodeAs[payloads.OrderCreatedEvent](c.decoders, enums.EventOrderCreated, envelope.Version, envelope.Data)
	switch {
	case errors.Is(err, registry.ErrNotRegistered):
		// A newer producer; leave it for a consumer that knows the version.
		c.logg.Warn(c.logg.WithField(logCtx, "version", envelope.Version), "unsupported payload version")
		c.release(logCtx, eventID)
		return processResult{nack: true}
	case err != nil:
		c.logg.Error(logCtx, "failed to parse payload", err)
		c.complete(logCtx, eventID)
		c.metrics.Observe(eventType, "malformed", time.Since(started))
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, payload.OrderID.String())

	if payload.Email == "" {
		c.logg.Info(logCtx, "customer has no email on file, skipping confirmation")
		c.complete(logCtx, eventID)
		c.metrics.Observe(eventType, "skipped", time.Since(started))
		return processResult{ack: true}
	}

	if err := c.sender.Send(ctx, orderConfirmationEmail(*payload)); err != nil {
		failure := pkgerrors.Wrap(pkgerrors.CodeNotification, err, "send order confirmation")
		c.logg.Error(logCtx, "order confirmation email failed", failure)
		c.release(logCtx, eventID)
		c.metrics.Observe(eventType, "failed", time.Since(started))
		return processResult{nack: true}
	}

	c.complete(logCtx, eventID)
	c.logg.Info(logCtx, "order confirmation email sent")
	c.metrics.Observe(eventType, "sent", time.Since(started))
	return processResult{ack: true}
}

// complete failures only widen the duplicate window to the claim TTL.
func (c *Consumer) complete(ctx context.Context, eventID uuid.UUID) {
	if err := c.idempotency.Complete(ctx, orderEmailConsumer, eventID); err != nil {
		c.logg.Error(ctx, "failed to mark event processed", err)
	}
}

func (c *Consumer) release(ctx context.Context, eventID uuid.UUID) {
	if err := c.idempotency.Release(ctx, orderEmailConsumer, eventID); err != nil && !errors.Is(err, context.Canceled) {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "failed to release idempotency key")
	}
}
