package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/payloads"
)

// Route sends one event type to a Pub/Sub topic.
type Route struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string
}

// ResolvedEvent is an outbox row whose envelope and payload decoded cleanly.
type ResolvedEvent struct {
	Route    Route
	Envelope outbox.PayloadEnvelope
	Payload  any
}

// PermanentError marks a row that can never be published as stored.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent outbox failure"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as a PermanentError. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return PermanentError{Err: err}
}

// IsPermanent reports whether err, or anything it wraps, is permanent.
func IsPermanent(err error) bool {
	var p PermanentError
	return errors.As(err, &p)
}

// Router resolves outbox rows to a topic and a validated payload.
// order_created feeds the notification topic read by the email consumer;
// every other lifecycle event goes to the orders topic.
type Router struct {
	routes   map[enums.OutboxEventType]Route
	decoders *DecoderRegistry
}

func NewRouter(cfg config.PubSubConfig) (*Router, error) {
	if cfg.OrdersTopic == "" {
		return nil, errors.New("orders topic is required")
	}
	if cfg.NotificationTopic == "" {
		return nil, errors.New("notification topic is required")
	}

	r := &Router{
		routes:   make(map[enums.OutboxEventType]Route),
		decoders: NewDecoderRegistry(),
	}
	r.add(enums.EventOrderCreated, cfg.NotificationTopic, JSONDecoder[payloads.OrderCreatedEvent]())
	r.add(enums.EventOrderStatusChanged, cfg.OrdersTopic, JSONDecoder[payloads.OrderStatusChangedEvent]())
	r.add(enums.EventOrderCanceled, cfg.OrdersTopic, JSONDecoder[payloads.OrderCanceledEvent]())
	r.add(enums.EventOrderReceived, cfg.OrdersTopic, JSONDecoder[payloads.OrderReceivedEvent]())
	r.add(enums.EventOrderRated, cfg.OrdersTopic, JSONDecoder[payloads.OrderRatedEvent]())
	return r, nil
}

func (r *Router) add(eventType enums.OutboxEventType, topic string, decode decodeFunc) {
	r.routes[eventType] = Route{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		Topic:         topic,
	}
	r.decoders.Register(eventType, outbox.EnvelopeVersion, decode)
}

// Topics lists the distinct destination topics in name order.
func (r *Router) Topics() []string {
	seen := make(map[string]struct{}, len(r.routes))
	topics := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		if _, ok := seen[route.Topic]; ok {
			continue
		}
		seen[route.Topic] = struct{}{}
		topics = append(topics, route.Topic)
	}
	sort.Strings(topics)
	return topics
}

// Resolve checks the row against its route and decodes the payload. Every
// error it returns is permanent.
func (r *Router) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	route, ok := r.routes[event.EventType]
	if !ok {
		return nil, Permanent(fmt.Errorf("no route for event type %q", event.EventType))
	}
	if route.AggregateType != event.AggregateType {
		return nil, Permanent(fmt.Errorf("aggregate mismatch: %s routes %s, row has %s", event.EventType, route.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, Permanent(errors.New("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, Permanent(fmt.Errorf("decode envelope: %w", err))
	}
	if envelope.EventID != event.ID.String() {
		return nil, Permanent(fmt.Errorf("envelope event id %s does not match row %s", envelope.EventID, event.ID))
	}

	payload, err := r.decoders.Decode(event.EventType, envelope.Version, envelope.Data)
	if err != nil {
		return nil, Permanent(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}
	return &ResolvedEvent{Route: route, Envelope: envelope, Payload: payload}, nil
}
