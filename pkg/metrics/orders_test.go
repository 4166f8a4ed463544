package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.IncCreated("cod", true)
	m.IncCreated("cod", true)
	m.IncTransition("confirmed", "shipping")
	m.IncRejected("cancel", "UNAUTHORIZED")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_orders_created_total", "customer", "guest"); err != nil {
		t.Fatalf("fetch created: %v", err)
	} else if got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_order_status_transitions_total", "to", "shipping"); err != nil {
		t.Fatalf("fetch transitions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transitions=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_order_operations_rejected_total", "operation", "cancel"); err != nil {
		t.Fatalf("fetch rejected: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
}

func TestNotificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotificationMetrics(reg)
	m.Observe("order_created", "sent", 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_notifications_total", "result", "sent"); err != nil {
		t.Fatalf("fetch notifications: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var orders *OrderMetrics
	orders.IncCreated("cod", false)
	orders.IncTransition("a", "b")
	orders.IncRejected("x", "y")

	NewOrderMetrics(nil).IncCreated("cod", false)

	var notifications *NotificationMetrics
	notifications.Observe("e", "r", time.Second)
}
