package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/pkg/enums"
)

// EnvelopeVersion is the envelope version written by this service.
const EnvelopeVersion = 1

// ActorRef is the customer or staff member behind an event. Nil for guests.
type ActorRef struct {
	ID   uuid.UUID       `json:"id"`
	Role enums.ActorRole `json:"role,omitempty"`
}

// PayloadEnvelope is stored in outbox_events.payload and published unchanged
// as the Pub/Sub message body. EventID equals the outbox row id.
type PayloadEnvelope struct {
	Version     int             `json:"version"`
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType,omitempty"`
	AggregateID string          `json:"aggregateId,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Actor       *ActorRef       `json:"actor,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// EventUUID parses EventID.
func (e PayloadEnvelope) EventUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(e.EventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("event id %q: %w", e.EventID, err)
	}
	return id, nil
}

// DecodeEnvelope parses a published message body. Envelopes without a version
// or a parseable event id are rejected.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, err
	}
	if env.Version < 1 {
		return PayloadEnvelope{}, errors.New("envelope version missing")
	}
	if _, err := env.EventUUID(); err != nil {
		return PayloadEnvelope{}, err
	}
	return env, nil
}
