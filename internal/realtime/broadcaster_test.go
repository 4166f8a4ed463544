package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
)

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	sent    []published
	err     error
	pingErr error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{channel: channel, payload: payload})
	return nil
}

func (f *fakePublisher) Ping(context.Context) error {
	return f.pingErr
}

func TestBroadcasterRejectsPublishBeforeStart(t *testing.T) {
	pub := &fakePublisher{}
	b, err := NewBroadcaster(pub, config.RealtimeConfig{}, nil)
	require.NoError(t, err)

	err = b.PublishOrderEvent(context.Background(), uuid.New(), OrderEvent{Event: EventOrderStatusUpdated})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInfrastructure, typed.Code())
	assert.Equal(t, "realtime channel not initialized", typed.Message())
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Empty(t, pub.sent)
}

func TestBroadcasterPublishesToOrderAndAdminChannels(t *testing.T) {
	pub := &fakePublisher{}
	b, err := NewBroadcaster(pub, config.RealtimeConfig{ChannelPrefix: "test:rt"}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))

	orderID := uuid.New()
	err = b.PublishOrderEvent(context.Background(), orderID, OrderEvent{
		Event:  EventOrderStatusUpdated,
		Public: map[string]any{"id": orderID.String(), "order_status": 4},
		Full:   map[string]any{"id": orderID.String(), "order_status": 4, "customer": map[string]any{"email": "lan@example.com"}},
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "test:rt:order:"+orderID.String(), pub.sent[0].channel)
	assert.Equal(t, "test:rt:orders:admin", pub.sent[1].channel)

	var frame struct {
		Event string         `json:"event"`
		Order map[string]any `json:"order"`
	}
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &frame))
	assert.Equal(t, "order-status-updated", frame.Event)
	assert.Equal(t, float64(4), frame.Order["order_status"])
	assert.NotContains(t, frame.Order, "customer")
	assert.NotContains(t, string(pub.sent[0].payload), "lan@example.com")

	require.NoError(t, json.Unmarshal(pub.sent[1].payload, &frame))
	assert.Contains(t, frame.Order, "customer")
}

func TestBroadcasterStartFailsWhenPingFails(t *testing.T) {
	b, err := NewBroadcaster(&fakePublisher{pingErr: errors.New("refused")}, config.RealtimeConfig{}, nil)
	require.NoError(t, err)

	require.Error(t, b.Start(context.Background()))
	assert.Error(t, b.Ready())
}

func TestBroadcasterStop(t *testing.T) {
	b, err := NewBroadcaster(&fakePublisher{}, config.RealtimeConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, b.Ready())

	b.Stop()
	assert.Equal(t, pkgerrors.CodeInfrastructure, pkgerrors.CodeOf(b.Ready()))
}

func TestBroadcasterPublishFailureIsDependencyError(t *testing.T) {
	b, err := NewBroadcaster(&fakePublisher{err: errors.New("broken pipe")}, config.RealtimeConfig{}, nil)
	require.NoError(t, err)
	b.started.Store(true)

	err = b.PublishOrderEvent(context.Background(), uuid.New(), OrderEvent{Event: EventOrderStatusUpdated})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestNilBroadcasterIsNotReady(t *testing.T) {
	var b *Broadcaster
	assert.Equal(t, pkgerrors.CodeInfrastructure, pkgerrors.CodeOf(b.Ready()))
}
