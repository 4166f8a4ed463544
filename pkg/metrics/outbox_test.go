package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOutboxMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.IncPublished("order_created", "notifications")
	m.IncRetried("order_status_changed")
	m.IncRetried("order_status_changed")
	m.IncDeferred("order_canceled")
	m.IncDeadLettered("order_rated", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_published_total", "topic", "notifications"); err != nil {
		t.Fatalf("fetch published: %v", err)
	} else if got != 1 {
		t.Fatalf("expected published=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_publish_retries_total", "event_type", "order_status_changed"); err != nil {
		t.Fatalf("fetch retries: %v", err)
	} else if got != 2 {
		t.Fatalf("expected retries=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_publish_deferred_total", "event_type", "order_canceled"); err != nil {
		t.Fatalf("fetch deferred: %v", err)
	} else if got != 1 {
		t.Fatalf("expected deferred=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_outbox_dead_lettered_total", "reason", "unknown"); err != nil {
		t.Fatalf("fetch dead lettered: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dead lettered=1, got %f", got)
	}

	var nilMetrics *OutboxMetrics
	nilMetrics.IncPublished("e", "t")
}

func TestServeWithoutAddressIsNoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Serve(ctx, "", prometheus.NewRegistry()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
