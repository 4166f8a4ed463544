package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-orders/pkg/db/models"
	"github.com/angelmondragon/storefront-orders/pkg/enums"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

// DomainEvent is an event queued by a state change.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	Version       int
	OccurredAt    time.Time
}

func (e DomainEvent) validate() error {
	switch {
	case !e.EventType.IsValid():
		return fmt.Errorf("unknown outbox event type %q", e.EventType)
	case !e.AggregateType.IsValid():
		return fmt.Errorf("unknown aggregate type %q", e.AggregateType)
	case e.AggregateID == uuid.Nil:
		return errors.New("aggregate id required")
	case e.Data == nil:
		return errors.New("event data required")
	}
	return nil
}

type inserter interface {
	Insert(tx *gorm.DB, event models.OutboxEvent) error
}

// Service queues domain events in the outbox table.
type Service struct {
	repo  inserter
	logg  *logger.Logger
	newID func() (uuid.UUID, error)
	now   func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		logg:  logg,
		newID: uuid.NewV7,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Emit writes the event inside tx, so it commits or rolls back with the state
// change it describes. Event ids are time ordered.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if err := event.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.EventType, err)
	}
	eventID, err := s.newID()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if event.Version <= 0 {
		event.Version = EnvelopeVersion
	}

	body, err := json.Marshal(PayloadEnvelope{
		Version:     event.Version,
		EventID:     eventID.String(),
		EventType:   string(event.EventType),
		AggregateID: event.AggregateID.String(),
		OccurredAt:  event.OccurredAt,
		Actor:       event.Actor,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := s.repo.Insert(tx, models.OutboxEvent{
		ID:            eventID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       body,
	}); err != nil {
		return err
	}

	if s.logg != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"event_id":   eventID.String(),
			"event_type": event.EventType,
			"order_id":   event.AggregateID.String(),
		}), "outbox event queued")
	}
	return nil
}
