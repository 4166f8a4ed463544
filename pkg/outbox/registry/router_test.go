package registry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/outbox"
	"github.com/angelmondragon/storefront-orders/pkg/outbox/payloads"
)

func TestRouterResolvesOrderCreatedToNotificationTopic(t *testing.T) {
	router := newTestRouter(t)
	orderID := uuid.New()
	event := outboxRow(t, enums.EventOrderCreated, payloads.OrderCreatedEvent{
		OrderID:    orderID,
		CustomerID: uuid.New(),
		Email:      "guest@example.com",
		Items:      []payloads.OrderLine{{ProductID: uuid.New(), Quantity: 1, PriceEnd: decimal.NewFromInt(2500)}},
		Total:      decimal.NewFromInt(2500),
	})

	resolved, err := router.Resolve(event)
	require.NoError(t, err)
	assert.Equal(t, "notification-topic", resolved.Route.Topic)
	assert.Equal(t, enums.EventOrderCreated, resolved.Route.EventType)
	assert.Equal(t, event.ID.String(), resolved.Envelope.EventID)

	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok, "payload type %T", resolved.Payload)
	assert.Equal(t, orderID, payload.OrderID)
	assert.True(t, payload.Total.Equal(decimal.NewFromInt(2500)))
}

func TestRouterRoutesLifecycleEventsToOrdersTopic(t *testing.T) {
	router := newTestRouter(t)
	event := outboxRow(t, enums.EventOrderStatusChanged, payloads.OrderStatusChangedEvent{
		OrderID: uuid.New(),
		From:    enums.OrderStatusConfirmed,
		To:      enums.OrderStatusShipping,
	})

	resolved, err := router.Resolve(event)
	require.NoError(t, err)
	assert.Equal(t, "orders-topic", resolved.Route.Topic)
	assert.Equal(t, enums.OrderStatusShipping, resolved.Payload.(*payloads.OrderStatusChangedEvent).To)
}

func TestRouterRejectsBadRowsPermanently(t *testing.T) {
	router := newTestRouter(t)
	valid := payloads.OrderReceivedEvent{OrderID: uuid.New()}

	cases := map[string]func(*models.OutboxEvent){
		"unknown event type": func(e *models.OutboxEvent) { e.EventType = "order_exploded" },
		"aggregate mismatch": func(e *models.OutboxEvent) { e.AggregateType = enums.AggregateNotification },
		"missing aggregate":  func(e *models.OutboxEvent) { e.AggregateID = uuid.Nil },
		"foreign event id":   func(e *models.OutboxEvent) { e.ID = uuid.New() },
		"null payload": func(e *models.OutboxEvent) {
			e.Payload = envelopeFor(t, e.ID, json.RawMessage("null"), outbox.EnvelopeVersion)
		},
		"unknown version": func(e *models.OutboxEvent) {
			e.Payload = envelopeFor(t, e.ID, mustMarshal(t, valid), 7)
		},
		"broken envelope": func(e *models.OutboxEvent) { e.Payload = json.RawMessage(`{"version":`) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			event := outboxRow(t, enums.EventOrderReceived, valid)
			mutate(&event)

			_, err := router.Resolve(event)
			require.Error(t, err)
			assert.True(t, IsPermanent(err), "got %v", err)
		})
	}
}

func TestRouterTopicsAreDistinctAndSorted(t *testing.T) {
	assert.Equal(t, []string{"notification-topic", "orders-topic"}, newTestRouter(t).Topics())
}

func TestNewRouterRequiresTopics(t *testing.T) {
	_, err := NewRouter(config.PubSubConfig{OrdersTopic: "orders"})
	assert.Error(t, err)
	_, err = NewRouter(config.PubSubConfig{NotificationTopic: "notify"})
	assert.Error(t, err)
}

func TestPermanentWrapping(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(assert.AnError))
	assert.True(t, IsPermanent(Permanent(assert.AnError)))
	assert.ErrorIs(t, Permanent(assert.AnError), assert.AnError)
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	router, err := NewRouter(config.PubSubConfig{
		OrdersTopic:       "orders-topic",
		NotificationTopic: "notification-topic",
	})
	require.NoError(t, err)
	return router
}

func outboxRow(t *testing.T, eventType enums.OutboxEventType, payload any) models.OutboxEvent {
	t.Helper()
	id := uuid.New()
	return models.OutboxEvent{
		ID:            id,
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopeFor(t, id, mustMarshal(t, payload), outbox.EnvelopeVersion),
	}
}

func envelopeFor(t *testing.T, id uuid.UUID, data json.RawMessage, version int) json.RawMessage {
	t.Helper()
	return mustMarshal(t, outbox.PayloadEnvelope{
		Version:    version,
		EventID:    id.String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestRouterCoversEveryOrderEvent(t *testing.T) {
	router := newTestRouter(t)
	for _, eventType := range enums.OrderEventTypes {
		route, ok := router.routes[eventType]
		require.True(t, ok, "no route for %s", eventType)
		assert.Equal(t, enums.AggregateOrder, route.AggregateType)
	}
	assert.Len(t, router.routes, len(enums.OrderEventTypes))
}
