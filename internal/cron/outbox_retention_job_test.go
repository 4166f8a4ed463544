package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

type fakePurger struct {
	cutoff time.Time
	calls  int
	rows   int64
	err    error
}

func (f *fakePurger) DeletePublishedBefore(_ *gorm.DB, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) DeleteBefore(_ *gorm.DB, cutoff time.Time) (int64, error) {
	return f.record(cutoff)
}

func (f *fakePurger) record(cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.rows, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newRetentionJob(t *testing.T, outbox, dlq *fakePurger, retention time.Duration) *outboxRetentionJob {
	t.Helper()
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:      logger.Nop(),
		DB:          passthroughTx{},
		Outbox:      outbox,
		DeadLetters: dlq,
		Retention:   retention,
	})
	require.NoError(t, err)
	concrete, ok := job.(*outboxRetentionJob)
	require.True(t, ok)
	return concrete
}

func TestOutboxRetentionJobPurgesBothTables(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	outbox := &fakePurger{rows: 7}
	dlq := &fakePurger{rows: 2}
	job := newRetentionJob(t, outbox, dlq, 48*time.Hour)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	want := now.Add(-48 * time.Hour)
	assert.Equal(t, 1, outbox.calls)
	assert.Equal(t, 1, dlq.calls)
	assert.True(t, outbox.cutoff.Equal(want))
	assert.True(t, dlq.cutoff.Equal(want))
}

func TestOutboxRetentionJobDefaultsWindow(t *testing.T) {
	job := newRetentionJob(t, &fakePurger{}, &fakePurger{}, 0)
	assert.Equal(t, defaultOutboxRetention, job.retention)
	assert.Equal(t, "outbox-retention", job.Name())
}

func TestOutboxRetentionJobStopsOnOutboxError(t *testing.T) {
	outbox := &fakePurger{err: errors.New("boom")}
	dlq := &fakePurger{}
	job := newRetentionJob(t, outbox, dlq, time.Hour)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge published events")
	assert.Zero(t, dlq.calls)
}

func TestNewOutboxRetentionJobValidates(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: logger.Nop(), DB: passthroughTx{}, Outbox: &fakePurger{}})
	assert.Error(t, err)
}
