// Package websocket delivers feed events to connected viewers.
//
// A single Hub goroutine owns the session set. Sessions register and
// unregister through channels, events arrive through a buffered queue, and
// every session gets its own buffered send queue drained by a write pump.
// A session whose queue is full is dropped rather than slowing the hub down.
package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"postfeed/internal/config"
	"postfeed/internal/metrics"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const broadcastQueueSize = 1024

// Frame is what a session receives: the topic and the event as published.
type Frame struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

type envelope struct {
	seq   uint64
	topic string
	frame []byte
}

// Hub maintains the set of active sessions and fans frames out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	// seq numbers emitted events; a session only gets events numbered after its registration.
	seq atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastQueueSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run services the hub until ctx is canceled, then closes every session.
// A hub is run once.
func (h *Hub) Run(ctx context.Context) error {
	config.Logger.Info("🚀 Websocket hub started")
	for {
		select {
		case <-ctx.Done():
			n := h.GetClientCount()
			close(h.done)
			h.closeAllClients()
			config.Logger.Info("🛑 Websocket hub stopped", zap.Int("clients_closed", n))
			return ctx.Err()

		case client := <-h.Register:
			client.joinedAt = h.seq.Load()
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketSessions.Set(float64(n))
			config.Logger.Debug("websocket client connected", zap.Uint64("client", client.id), zap.Int("total_clients", n))

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketSessions.Set(float64(n))
			config.Logger.Debug("websocket client disconnected", zap.Uint64("client", client.id), zap.Int("total_clients", n))

		case env := <-h.broadcast:
			h.broadcastToClients(env)
		}
	}
}

// Emit queues payload for every session subscribed to topic. It never blocks;
// if the hub is that far behind the event is dropped and counted.
func (h *Hub) Emit(topic string, payload []byte) {
	frame, err := json.Marshal(Frame{Topic: topic, Data: payload})
	if err != nil {
		metrics.BroadcastDropped.WithLabelValues(metrics.DropEncode).Inc()
		config.Logger.Error("❌ Could not frame event", zap.String("topic", topic), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- envelope{seq: h.seq.Add(1), topic: topic, frame: frame}:
	default:
		metrics.BroadcastDropped.WithLabelValues(metrics.DropQueueFull).Inc()
		config.Logger.Warn("⚠️ Broadcast queue full, dropping event", zap.String("topic", topic))
	}
}

// broadcastToClients walks sessions in id order so delivery order is stable.
func (h *Hub) broadcastToClients(env envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.Subscribed(env.topic) && env.seq > client.joinedAt {
			clients = append(clients, client)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- env.frame:
		default:
			close(client.send)
			delete(h.clients, client)
			metrics.BroadcastDropped.WithLabelValues(metrics.DropSlowSession).Inc()
			config.Logger.Warn("⚠️ Dropping slow websocket client", zap.Uint64("client", client.id))
		}
	}
	metrics.WebsocketSessions.Set(float64(len(h.clients)))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebsocketSessions.Set(0)
}

// GetClientCount returns the number of connected sessions.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
