package enums

import "fmt"

// OrderStatus is the single order lifecycle vocabulary shared by the API,
// the database and every client.
type OrderStatus int

const (
	OrderStatusConfirmed   OrderStatus = 1
	OrderStatusPreparing   OrderStatus = 2
	OrderStatusReadyToShip OrderStatus = 3
	OrderStatusShipping    OrderStatus = 4
	OrderStatusDelivered   OrderStatus = 5
	OrderStatusCancelled   OrderStatus = 6
)

var orderStatusTitles = map[OrderStatus]string{
	OrderStatusConfirmed:   "Order confirmed",
	OrderStatusPreparing:   "Preparing",
	OrderStatusReadyToShip: "Ready to ship",
	OrderStatusShipping:    "Shipping",
	OrderStatusDelivered:   "Delivered",
	OrderStatusCancelled:   "Cancelled",
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return fmt.Sprintf("%d", int(s))
}

// Title returns the human readable label, or "Unknown".
func (s OrderStatus) Title() string {
	if title, ok := orderStatusTitles[s]; ok {
		return title
	}
	return "Unknown"
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTitles[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsCustomerCancellable reports whether a customer may still cancel the order.
// Once the parcel leaves the warehouse the order can no longer be cancelled.
func (s OrderStatus) IsCustomerCancellable() bool {
	return s == OrderStatusConfirmed || s == OrderStatusPreparing || s == OrderStatusReadyToShip
}

// CanTransitionTo reports whether staff may move an order from s to next.
// Forward moves across 1..5 may skip stages, Cancelled is reachable from
// any non-terminal status, and terminal statuses are locked.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next || s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return next > s
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value int) (OrderStatus, error) {
	status := OrderStatus(value)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid order status %d", value)
	}
	return status, nil
}

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusReadyToShip,
		OrderStatusShipping,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}
