package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-orders/pkg/config"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

const (
	clientBuffer        = 16
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
	maxInboundMessage   = 512
)

type subscriber interface {
	PSubscribe(ctx context.Context, patterns ...string) *goredis.PubSub
}

type client struct {
	send chan []byte
}

// Hub fans Redis messages out to the websocket clients of this process.
type Hub struct {
	prefix       string
	logg         *logger.Logger
	writeTimeout time.Duration
	pingInterval time.Duration
	upgrader     websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// NewHub builds a hub that accepts websocket upgrades from allowedOrigins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewHub(cfg config.RealtimeConfig, allowedOrigins []string, logg *logger.Logger) *Hub {
	prefix := strings.TrimSpace(cfg.ChannelPrefix)
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}

	return &Hub{
		prefix:       prefix,
		logg:         logg,
		writeTimeout: writeTimeout,
		pingInterval: pingInterval,
		clients:      make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[strings.TrimRight(origin, "/")]
				return ok
			},
		},
	}
}

// Run consumes the Redis pattern subscription until ctx is canceled.
func (h *Hub) Run(ctx context.Context, sub subscriber) error {
	ps := sub.PSubscribe(ctx, h.prefix+":*")
	if ps == nil {
		return ErrNotStarted
	}
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	if h.logg != nil {
		h.logg.Info(ctx, "realtime hub subscribed")
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.dispatch(strings.TrimPrefix(msg.Channel, h.prefix+":"), []byte(msg.Payload))
		}
	}
}

// Subscribers reports how many local clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

func (h *Hub) dispatch(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[channel] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop the frame.
			if h.logg != nil {
				h.logg.Warn(h.logg.WithField(context.Background(), "channel", channel), "realtime frame dropped")
			}
		}
	}
}

func (h *Hub) register(channel string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[channel]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[channel] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(channel string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[channel]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, channel)
	}
}

// Serve upgrades the request and streams channel frames until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, channel string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{send: make(chan []byte, clientBuffer)}
	h.register(channel, c)
	defer h.unregister(channel, c)

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, c, done)
	return nil
}

// readPump drains control frames so pongs and close messages are processed.
func (h *Hub) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxInboundMessage)
	_ = conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * h.pingInterval))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client, done <-chan struct{}) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case <-done:
			return
		case payload := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
