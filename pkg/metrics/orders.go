package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle activity.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders created, by payment type and customer kind.",
	}, []string{"payment_type", "customer"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Accepted order status transitions.",
	}, []string{"from", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_operations_rejected_total",
		Help:      "Order operations rejected by validation, ownership or state guards.",
	}, []string{"operation", "code"})
	reg.MustRegister(created, transitions, rejected)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		rejected:    rejected,
	}
}

// IncCreated records a new order. guest distinguishes checkout without a token.
func (m *OrderMetrics) IncCreated(paymentType string, guest bool) {
	if m == nil || m.created == nil {
		return
	}
	customer := "registered"
	if guest {
		customer = "guest"
	}
	m.created.WithLabelValues(normalizeLabel(paymentType), customer).Inc()
}

// IncTransition records an accepted status change.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncRejected records a refused operation with its error code.
func (m *OrderMetrics) IncRejected(operation, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
