package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	finished := time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)

	m.ObserveRun("outbox-retention", OutcomeSucceeded, 2*time.Second, finished)
	m.ObserveRun("outbox-retention", OutcomeFailed, time.Second, finished.Add(time.Hour))
	m.IncSkippedCycle()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	ok, err := series(mfs, "storefront_cron_job_runs_total", map[string]string{"job": "outbox-retention", "outcome": OutcomeSucceeded})
	require.NoError(t, err)
	assert.Equal(t, 1.0, ok.GetCounter().GetValue())

	failed, err := series(mfs, "storefront_cron_job_runs_total", map[string]string{"job": "outbox-retention", "outcome": OutcomeFailed})
	require.NoError(t, err)
	assert.Equal(t, 1.0, failed.GetCounter().GetValue())

	duration, err := series(mfs, "storefront_cron_job_duration_seconds", map[string]string{"job": "outbox-retention"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), duration.GetHistogram().GetSampleCount())
	assert.InDelta(t, 3.0, duration.GetHistogram().GetSampleSum(), 1e-9)

	last, err := series(mfs, "storefront_cron_job_last_success_timestamp_seconds", map[string]string{"job": "outbox-retention"})
	require.NoError(t, err)
	assert.Equal(t, float64(finished.Unix()), last.GetGauge().GetValue())

	skipped, err := series(mfs, "storefront_cron_cycles_skipped_total", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, skipped.GetCounter().GetValue())
}

func TestCronJobMetricsNilIsSafe(t *testing.T) {
	var m *CronJobMetrics
	assert.NotPanics(t, func() {
		m.ObserveRun("job", OutcomeSucceeded, time.Second, time.Now())
		m.IncSkippedCycle()
	})
	assert.Nil(t, NewCronJobMetrics(nil))
}
