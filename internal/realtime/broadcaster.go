package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

const (
	// EventOrderStatusUpdated is the event name pushed on every status change.
	EventOrderStatusUpdated = "order-status-updated"
	// AdminChannel receives every order event for back-office dashboards.
	AdminChannel = "orders:admin"

	defaultChannelPrefix = "sf:realtime"
)

// ErrNotStarted is wrapped into the infrastructure error returned before Start.
var ErrNotStarted = errors.New("realtime channel not initialized")

// OrderChannel is the per-order channel name.
func OrderChannel(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

// Message is the JSON frame delivered to subscribers.
type Message struct {
	Event string `json:"event"`
	Order any    `json:"order"`
}

// OrderEvent is one order change rendered for both audiences. Public goes to
// the order's own channel, which anyone holding the order id may join, so it
// must not carry customer contact or address data. Full goes to the admin
// channel.
type OrderEvent struct {
	Event  string
	Public any
	Full   any
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Broadcaster publishes order events to Redis so every API replica can fan
// them out to its websocket clients.
type Broadcaster struct {
	pub     publisher
	prefix  string
	logg    *logger.Logger
	started atomic.Bool
}

// NewBroadcaster builds an unstarted broadcaster.
func NewBroadcaster(pub publisher, cfg config.RealtimeConfig, logg *logger.Logger) (*Broadcaster, error) {
	if pub == nil {
		return nil, fmt.Errorf("realtime publisher required")
	}
	prefix := strings.TrimSpace(cfg.ChannelPrefix)
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	return &Broadcaster{pub: pub, prefix: prefix, logg: logg}, nil
}

// Start marks the channel usable. When the publisher can be pinged it must
// answer first.
func (b *Broadcaster) Start(ctx context.Context) error {
	if p, ok := b.pub.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("realtime ping: %w", err)
		}
	}
	b.started.Store(true)
	if b.logg != nil {
		b.logg.Info(b.logg.WithField(ctx, "channel_prefix", b.prefix), "realtime broadcaster started")
	}
	return nil
}

// Stop makes later publishes fail fast.
func (b *Broadcaster) Stop() {
	b.started.Store(false)
}

// Ready returns the InfrastructureUnavailable error until Start has succeeded.
func (b *Broadcaster) Ready() error {
	if b == nil || !b.started.Load() {
		return pkgerrors.Wrap(pkgerrors.CodeInfrastructure, ErrNotStarted, ErrNotStarted.Error())
	}
	return nil
}

// PublishOrderEvent pushes the public rendering to the order's channel and
// the full rendering to the admin channel.
func (b *Broadcaster) PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event OrderEvent) error {
	if err := b.Ready(); err != nil {
		return err
	}
	frames := []struct {
		channel string
		msg     Message
	}{
		{OrderChannel(orderID), Message{Event: event.Event, Order: event.Public}},
		{AdminChannel, Message{Event: event.Event, Order: event.Full}},
	}

	var errs error
	for _, frame := range frames {
		payload, err := json.Marshal(frame.msg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode realtime message")
		}
		if err := b.pub.Publish(ctx, b.redisChannel(frame.channel), payload); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("publish %s: %w", frame.channel, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "realtime publish")
	}
	return nil
}

// Prefix is the Redis channel namespace shared with Hub.
func (b *Broadcaster) Prefix() string {
	return b.prefix
}

func (b *Broadcaster) redisChannel(channel string) string {
	return b.prefix + ":" + channel
}
