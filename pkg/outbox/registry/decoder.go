package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

// ErrNotRegistered reports an event type or version this consumer cannot read.
var ErrNotRegistered = errors.New("decoder not registered")

// ErrInvalidPayload wraps JSON and validation failures. Both are permanent.
var ErrInvalidPayload = errors.New("invalid event payload")

type decodeFunc func(payload json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, version) pairs to payload decoders.
type DecoderRegistry struct {
	mu       sync.RWMutex
	decoders map[decoderKey]decodeFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]decodeFunc)}
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decode decodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decode
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error) {
	r.mu.RLock()
	decode, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s@v%d", ErrNotRegistered, eventType, version)
	}
	return decode(payload)
}

// DecodeAs decodes and asserts the payload type in one step.
func DecodeAs[T any](r *DecoderRegistry, eventType enums.OutboxEventType, version int, payload json.RawMessage) (*T, error) {
	out, err := r.Decode(eventType, version, payload)
	if err != nil {
		return nil, err
	}
	typed, ok := out.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: %s@v%d decoded to %T", ErrInvalidPayload, eventType, version, out)
	}
	return typed, nil
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// JSONDecoder unmarshals into a fresh T and runs its validate tags. Unknown
// fields are ignored so producers can add fields within a version.
func JSONDecoder[T any]() decodeFunc {
	return func(payload json.RawMessage) (any, error) {
		var out T
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if err := payloadValidator.Struct(&out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return &out, nil
	}
}
