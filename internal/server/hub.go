package server

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemroom/internal/game"
	"github.com/lox/holdemroom/internal/replica"
)

// TokenHolders is implemented by token pools that let presentation clients
// hold the dealt card tokens.
type TokenHolders interface {
	Attach(holder string)
	Detach(holder string)
	Release(holder string) bool
}

// Hub is the replication fan-out. The authority publishes committed states
// into it; the hub applies them to its replica and forwards the public view
// and table events to every websocket observer.
type Hub struct {
	replica     *replica.Replica
	holders     TokenHolders
	logger      *log.Logger
	mu          sync.RWMutex
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	done        chan struct{}
}

// NewHub creates a hub over r. holders may be nil.
func NewHub(r *replica.Replica, holders TokenHolders, logger *log.Logger) *Hub {
	return &Hub{
		replica:     r,
		holders:     holders,
		logger:      logger.WithPrefix("hub"),
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		done:        make(chan struct{}),
	}
}

// Replica returns the hub's read model.
func (h *Hub) Replica() *replica.Replica { return h.replica }

// Publish applies state and broadcasts the public view when it was new.
func (h *Hub) Publish(state game.State) {
	if !h.replica.Apply(state) {
		return
	}
	msg, err := NewMessage(MessageTypeState, h.replica.Public())
	if err != nil {
		h.logger.Error("Failed to encode state", "version", state.Version, "error", err)
		return
	}
	h.Broadcast(msg)
}

// OnEvent forwards table events to observers.
func (h *Hub) OnEvent(event game.GameEvent) {
	msg, err := NewMessage(MessageTypeEvent, EventData{Type: event.EventType(), Event: event})
	if err != nil {
		h.logger.Error("Failed to encode event", "type", event.EventType(), "error", err)
		return
	}
	h.Broadcast(msg)
}

// Broadcast sends msg to every connection without blocking.
func (h *Hub) Broadcast(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for conn := range h.connections {
		if err := conn.SendMessage(msg); err == nil {
			count++
		}
	}
	h.logger.Debug("Broadcasted message", "type", msg.Type, "recipients", count)
}

// Count returns the number of registered connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Run handles connection lifecycle until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			if conn.Holder() && h.holders != nil {
				h.holders.Attach(conn.ID())
			}
			// greeting under the lock keeps it ahead of any broadcast
			h.mu.Lock()
			h.connections[conn] = true
			h.greet(conn)
			total := len(h.connections)
			h.mu.Unlock()
			h.logger.Info("Client connected", "conn", conn.ID(), "holder", conn.Holder(), "total", total)

		case conn := <-h.unregister:
			h.mu.Lock()
			_, ok := h.connections[conn]
			delete(h.connections, conn)
			total := len(h.connections)
			h.mu.Unlock()
			if !ok {
				continue
			}
			if conn.Holder() && h.holders != nil {
				h.holders.Detach(conn.ID())
			}
			_ = conn.Close()
			h.logger.Info("Client disconnected", "conn", conn.ID(), "total", total)

		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.connections {
				_ = conn.Close()
			}
			h.connections = make(map[*Connection]bool)
			h.mu.Unlock()
			return
		}
	}
}

// greet tells a new connection who it is and what the table looks like.
func (h *Hub) greet(conn *Connection) {
	welcome, err := NewMessage(MessageTypeWelcome, WelcomeData{ConnectionID: conn.ID(), Holder: conn.Holder()})
	if err == nil {
		_ = conn.SendMessage(welcome)
	}
	if !h.replica.Ready() {
		return
	}
	if state, err := NewMessage(MessageTypeState, h.replica.Public()); err == nil {
		_ = conn.SendMessage(state)
	}
}

// Add registers conn and unregisters it once it closes.
func (h *Hub) Add(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}
	go func() {
		<-conn.Done()
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
}

func (h *Hub) release(conn *Connection) {
	if h.holders == nil {
		return
	}
	if h.holders.Release(conn.ID()) {
		h.logger.Debug("Last holder released tokens", "conn", conn.ID())
	}
}
