package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-orders/pkg/redis"
)

const (
	// DefaultClaimTTL bounds how long a crashed consumer can hold an event.
	DefaultClaimTTL = 10 * time.Minute

	stateProcessing = "processing"
	stateDone       = "done"
)

// ClaimState is the outcome of Claim.
type ClaimState int

const (
	// Claimed means the caller owns the event and must Complete or Release it.
	Claimed ClaimState = iota
	// AlreadyDone means a previous delivery finished the event.
	AlreadyDone
	// InFlight means another consumer holds an unexpired claim.
	InFlight
)

// Store is the Redis surface the manager needs.
type Store interface {
	redis.IdempotencyStore
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Manager tracks event processing per consumer in two phases. Claim takes a
// short lived "processing" key; Complete overwrites it with a "done" marker
// that lives for the full TTL. Keys follow the
// `sf:idempotency:evt:processed:<consumer>:<event_id>` pattern.
type Manager struct {
	store    Store
	ttl      time.Duration
	claimTTL time.Duration
}

// NewManager builds a manager whose done markers live for ttl.
func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	claimTTL := DefaultClaimTTL
	if ttl > 0 && ttl < claimTTL {
		claimTTL = ttl
	}
	return &Manager{store: store, ttl: ttl, claimTTL: claimTTL}, nil
}

// Claim tries to take ownership of eventID for consumer.
func (m *Manager) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (ClaimState, error) {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return InFlight, err
	}
	set, err := m.store.SetNX(ctx, key, stateProcessing, m.claimTTL)
	if err != nil {
		return InFlight, err
	}
	if set {
		return Claimed, nil
	}

	current, err := m.store.Get(ctx, key)
	switch {
	case errors.Is(err, goredis.Nil):
		// The claim expired between the two calls; let redelivery retry.
		return InFlight, nil
	case err != nil:
		return InFlight, err
	case current == stateProcessing:
		return InFlight, nil
	}
	return AlreadyDone, nil
}

// Complete marks a claimed event as finished.
func (m *Manager) Complete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, key, stateDone, m.ttl)
}

// Release drops a claim so the next delivery can retry the event.
func (m *Manager) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := m.processedKey(consumer, eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) processedKey(consumer string, eventID uuid.UUID) (string, error) {
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	scope := fmt.Sprintf("evt:processed:%s", consumer)
	return m.store.IdempotencyKey(scope, eventID.String()), nil
}
