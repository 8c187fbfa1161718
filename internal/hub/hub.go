// Package hub is the message bus between the offline controller and the
// connected app instances.
package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/google/uuid"
)

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// SkipWaiter activates a waiting controller.
type SkipWaiter interface {
	SkipWaiting() error
}

const (
	defaultSendBuffer = 16
	writeWait         = 10 * time.Second
)

type client struct {
	id         string
	conn       Conn
	send       chan offline.Message
	controlled atomic.Bool
	closeOnce  sync.Once
	done       chan struct{}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub tracks connected app instances. Instances become controlled when the
// controller claims them, or on connect once a claim has happened.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client

	claimed atomic.Bool

	skipMu  sync.RWMutex
	skipper SkipWaiter

	log logger.Logger
}

// New returns an empty Hub.
func New(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
	}
}

// SetSkipWaiter wires inbound SKIP_WAITING messages to w.
func (h *Hub) SetSkipWaiter(w SkipWaiter) {
	h.skipMu.Lock()
	h.skipper = w
	h.skipMu.Unlock()
}

// Serve registers conn and reads from it until the peer goes away or ctx
// ends. It blocks for the lifetime of the connection.
func (h *Hub) Serve(ctx context.Context, conn Conn) {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan offline.Message, defaultSendBuffer),
		done: make(chan struct{}),
	}
	c.controlled.Store(h.claimed.Load())

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Info("app instance connected",
		logger.String("client", c.id),
		logger.Bool("controlled", c.controlled.Load()),
		logger.Int("clients", total))

	go h.writePump(c)
	go func() {
		select {
		case <-ctx.Done():
			c.close()
		case <-c.done:
		}
	}()

	h.readPump(c)

	h.mu.Lock()
	delete(h.clients, c.id)
	total = len(h.clients)
	h.mu.Unlock()
	c.close()

	h.log.Info("app instance disconnected",
		logger.String("client", c.id),
		logger.Int("clients", total))
}

func (h *Hub) readPump(c *client) {
	for {
		var msg offline.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case offline.MsgSkipWaiting:
			h.skipWaiting(c.id)
		default:
			h.log.Debug("ignored message from app instance",
				logger.String("client", c.id),
				logger.String("type", msg.Type))
		}
	}
}

func (h *Hub) skipWaiting(clientID string) {
	h.skipMu.RLock()
	w := h.skipper
	h.skipMu.RUnlock()
	if w == nil {
		return
	}
	if err := w.SkipWaiting(); err != nil {
		h.log.Warn("skip waiting failed", logger.String("client", clientID), logger.Error(err))
	}
}

func (h *Hub) writePump(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				h.log.Warn("write to app instance failed",
					logger.String("client", c.id),
					logger.Error(err))
				c.close()
				return
			}
		}
	}
}

// Broadcast queues msg for every controlled instance and returns how many
// accepted it. Instances with a full queue are skipped.
func (h *Hub) Broadcast(msg offline.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		if !c.controlled.Load() {
			continue
		}
		select {
		case c.send <- msg:
			delivered++
		case <-c.done:
		default:
			h.log.Warn("app instance queue full, message dropped",
				logger.String("client", c.id),
				logger.String("type", msg.Type))
		}
	}
	return delivered
}

// Claim marks every connected instance, and every future one, as controlled.
func (h *Hub) Claim() int {
	h.claimed.Store(true)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.controlled.Store(true)
	}
	return len(h.clients)
}

// Stats reports connected and controlled instance counts.
func (h *Hub) Stats() (connected, controlled int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		connected++
		if c.controlled.Load() {
			controlled++
		}
	}
	return connected, controlled
}

// Close disconnects every instance.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close()
	}
}
