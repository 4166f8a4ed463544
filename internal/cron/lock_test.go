package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	values map[string]string
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	if current, ok := m.values[key]; !ok || current != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func (m *memoryLockStore) LockKey(name string) string { return "sf:lock:" + name }

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memoryLockStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(context.Background()))
	assert.Contains(t, store.values, "sf:lock:cron-worker")

	require.NoError(t, first.Release(context.Background()))
	assert.NotContains(t, store.values, "sf:lock:cron-worker")
}

func TestRedisLockLeavesForeignOwner(t *testing.T) {
	store := &memoryLockStore{values: map[string]string{}}
	lock, err := NewRedisLock(store, "cron-worker", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	store.values["sf:lock:cron-worker"] = "someone-else"
	require.ErrorIs(t, lock.Release(context.Background()), ErrLockLost)
	assert.Equal(t, "someone-else", store.values["sf:lock:cron-worker"])

	// The lost lock no longer belongs to this worker.
	require.NoError(t, lock.Release(context.Background()))
}

func TestRedisLockRejectsDoubleAcquire(t *testing.T) {
	store := &memoryLockStore{values: map[string]string{}}
	lock, err := NewRedisLock(store, "cron-worker", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = lock.Acquire(context.Background())
	require.Error(t, err)
}
