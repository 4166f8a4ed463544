package enums

// OutboxAggregateType is the kind of entity an outbox row belongs to. Rows of
// one aggregate share a Pub/Sub ordering key.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateNotification OutboxAggregateType = "notification"
)

func (a OutboxAggregateType) IsValid() bool {
	switch a {
	case AggregateOrder, AggregateNotification:
		return true
	}
	return false
}

// OutboxEventType names a domain fact recorded alongside an order write.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderCanceled      OutboxEventType = "order_canceled"
	EventOrderReceived      OutboxEventType = "order_received"
	EventOrderRated         OutboxEventType = "order_rated"
)

// OrderEventTypes lists every event an order emits, in lifecycle order.
var OrderEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCanceled,
	EventOrderReceived,
	EventOrderRated,
}

func (e OutboxEventType) IsValid() bool {
	switch e {
	case EventOrderCreated, EventOrderStatusChanged, EventOrderCanceled, EventOrderReceived, EventOrderRated:
		return true
	}
	return false
}
