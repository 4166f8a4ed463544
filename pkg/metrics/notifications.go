package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics tracks outbound order emails.
type NotificationMetrics struct {
	sent     *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewNotificationMetrics registers the notification metrics on reg.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Order notifications handled by the worker, by event and result.",
	}, []string{"event", "result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_seconds",
		Help:      "Time spent delivering one notification.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(sent, duration)
	return &NotificationMetrics{sent: sent, duration: duration}
}

// Observe records one handled notification.
func (m *NotificationMetrics) Observe(event, result string, took time.Duration) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(event), normalizeLabel(result)).Inc()
	m.duration.Observe(took.Seconds())
}
