package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

// OrderLine is an item as it appears in the confirmation email.
type OrderLine struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" validate:"min=1"`
	PriceEnd    decimal.Decimal `json:"priceEnd"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderCreatedEvent carries everything the email consumer needs so it never
// has to read the orders database.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID         `json:"orderId" validate:"required"`
	CustomerID   uuid.UUID         `json:"customerId" validate:"required"`
	CustomerName string            `json:"customerName"`
	Email        string            `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string            `json:"phone,omitempty"`
	PaymentType  enums.PaymentType `json:"paymentType"`
	Street       string            `json:"street"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	Items        []OrderLine       `json:"items" validate:"min=1,dive"`
	Total        decimal.Decimal   `json:"total"`
	OrderDate    time.Time         `json:"orderDate"`
}

// OrderStatusChangedEvent is emitted for every accepted status transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"orderId" validate:"required"`
	CustomerID  uuid.UUID         `json:"customerId"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to" validate:"required"`
	Description string            `json:"description"`
	ChangedAt   time.Time         `json:"changedAt"`
}

// OrderCanceledEvent is emitted whenever a customer cancels an order.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID         `json:"orderId" validate:"required"`
	CustomerID uuid.UUID         `json:"customerId"`
	From       enums.OrderStatus `json:"from"`
	Reason     string            `json:"reason"`
	CanceledAt time.Time         `json:"canceledAt"`
}

// OrderReceivedEvent is emitted when the customer confirms delivery.
type OrderReceivedEvent struct {
	OrderID    uuid.UUID `json:"orderId" validate:"required"`
	CustomerID uuid.UUID `json:"customerId"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// OrderRatedEvent is emitted on every rating upsert.
type OrderRatedEvent struct {
	OrderID    uuid.UUID `json:"orderId" validate:"required"`
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	CustomerID uuid.UUID `json:"customerId"`
	Stars      int       `json:"stars" validate:"min=1,max=5"`
}
