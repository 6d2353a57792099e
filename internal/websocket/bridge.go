// Package websocket pushes dashboard updates to browsers. HTML clients (htmx
// ws extension) receive rendered fragments; data clients receive JSON.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/pubsub"
)

// ConnectionType defines the type of WebSocket connection.
type ConnectionType int

const (
	// ConnectionTypeHTML is for clients that consume HTML fragments (htmx).
	ConnectionTypeHTML ConnectionType = iota
	// ConnectionTypeData is for clients that consume JSON.
	ConnectionTypeData
)

func (t ConnectionType) String() string {
	if t == ConnectionTypeData {
		return "data"
	}
	return "html"
}

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

// SnapshotFunc returns the messages a newly connected client needs to catch up.
type SnapshotFunc func(ConnectionType) [][]byte

type client struct {
	id       string
	conn     *websocket.Conn
	send     chan []byte
	connType ConnectionType
}

type broadcastMessage struct {
	payload  []byte
	connType ConnectionType
}

// Bridge fans broadcast topics out to connected websocket clients. A client
// whose buffer is full misses the message; the next region update replaces it.
type Bridge struct {
	subscriber pubsub.Subscriber
	snapshot   SnapshotFunc

	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan broadcastMessage
	done       chan struct{}

	mu      sync.RWMutex
	counts  map[ConnectionType]int
	started bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithSnapshot primes every new client with the current page state.
func WithSnapshot(fn SnapshotFunc) Option {
	return func(b *Bridge) { b.snapshot = fn }
}

// NewBridge creates a Bridge fed by sub.
func NewBridge(sub pubsub.Subscriber, opts ...Option) *Bridge {
	b := &Bridge{
		subscriber: sub,
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan broadcastMessage, 64),
		done:       make(chan struct{}),
		counts:     make(map[ConnectionType]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start subscribes to the broadcast topics and runs the bridge until ctx is done.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return errors.New("websocket bridge already started")
	}
	b.started = true
	b.mu.Unlock()

	routes := map[string]ConnectionType{
		pubsub.TopicHTMLBroadcast: ConnectionTypeHTML,
		pubsub.TopicDataBroadcast: ConnectionTypeData,
	}
	for topic, connType := range routes {
		connType := connType
		err := b.subscriber.Subscribe(ctx, topic, func(ctx context.Context, msg pubsub.Message) error {
			b.Broadcast(ctx, msg.Payload, connType)
			return nil
		})
		if err != nil {
			return err
		}
	}

	go b.run(ctx)
	slog.Info("WebSocket bridge started")
	return nil
}

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			for c := range b.clients {
				b.drop(c)
			}
			slog.Info("WebSocket bridge stopped")
			return

		case c := <-b.register:
			b.clients[c] = struct{}{}
			b.setCount(c.connType, 1)
			if b.snapshot != nil {
				for _, msg := range b.snapshot(c.connType) {
					c.trySend(msg)
				}
			}
			slog.Debug("WebSocket client registered", "clientID", c.id, "type", c.connType)

		case c := <-b.unregister:
			if _, ok := b.clients[c]; ok {
				b.drop(c)
				slog.Debug("WebSocket client unregistered", "clientID", c.id, "type", c.connType)
			}

		case msg := <-b.broadcast:
			for c := range b.clients {
				if c.connType == msg.connType {
					c.trySend(msg.payload)
				}
			}
		}
	}
}

func (b *Bridge) drop(c *client) {
	delete(b.clients, c)
	close(c.send)
	b.setCount(c.connType, -1)
}

func (b *Bridge) setCount(t ConnectionType, delta int) {
	b.mu.Lock()
	b.counts[t] += delta
	b.mu.Unlock()
}

// Clients reports how many clients of a type are connected.
func (b *Bridge) Clients(t ConnectionType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.counts[t]
}

// Broadcast queues payload for every client of connType.
func (b *Bridge) Broadcast(ctx context.Context, payload []byte, connType ConnectionType) {
	select {
	case b.broadcast <- broadcastMessage{payload: payload, connType: connType}:
	case <-b.done:
	case <-ctx.Done():
	}
}

// Handler upgrades the request and attaches a client of connType.
func (b *Bridge) Handler(connType ConnectionType) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		cl := &client{
			id:       uuid.NewString(),
			conn:     conn,
			send:     make(chan []byte, sendBuffer),
			connType: connType,
		}
		select {
		case b.register <- cl:
		case <-b.done:
			return conn.Close(websocket.StatusGoingAway, "server shutting down")
		}

		go b.writePump(cl)
		go b.readPump(cl)
		return nil
	}
}

// readPump drains the connection; the dashboard accepts no client messages.
func (b *Bridge) readPump(c *client) {
	defer func() {
		select {
		case b.unregister <- c:
		case <-b.done:
		}
	}()
	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				slog.Debug("WebSocket read ended", "clientID", c.id, "error", err)
			}
			return
		}
	}
}

func (b *Bridge) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				slog.Warn("WebSocket write error", "clientID", c.id, "error", err)
				return
			}
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (c *client) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("Client send channel full, dropping message", "clientID", c.id)
	}
}

// ClientCounts reports connected clients keyed by connection type name.
func (b *Bridge) ClientCounts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return map[string]int{
		ConnectionTypeHTML.String(): b.counts[ConnectionTypeHTML],
		ConnectionTypeData.String(): b.counts[ConnectionTypeData],
	}
}
