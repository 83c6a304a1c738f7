// Package websocket pushes job status events to connected upload clients.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
)

const (
	EventConnected  = "connected"
	EventFileStatus = "fileStatus"
)

// ErrClientGone is returned when addressing a client that has disconnected.
var ErrClientGone = errors.New("client is not connected")

// Event is the envelope of every message sent to a client.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hooks are called from the hub loop when a client joins or leaves.
type Hooks struct {
	OnConnect    func(clientID string)
	OnDisconnect func(clientID string)
}

// Hub maintains the set of active clients and addresses messages to them
// by client id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}

	hooks Hooks
	log   zerolog.Logger
}

func NewHub(hooks Hooks) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		hooks:      hooks,
		log:        logger.WithComponent("websocket"),
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if stale, ok := h.clients[client.id]; ok {
				stale.close()
			}
			h.clients[client.id] = client
			h.mu.Unlock()
			if h.hooks.OnConnect != nil {
				h.hooks.OnConnect(client.id)
			}
			// The id is only announced once the client's queue exists.
			if msg, err := json.Marshal(Event{Event: EventConnected, Data: map[string]string{"clientId": client.id}}); err == nil {
				client.enqueue(msg)
			}
			h.log.Info().Str("client_id", client.id).Msg("Client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			current, ok := h.clients[client.id]
			if ok && current == client {
				delete(h.clients, client.id)
			}
			h.mu.Unlock()
			client.close()
			if ok && current == client && h.hooks.OnDisconnect != nil {
				h.hooks.OnDisconnect(client.id)
			}
			h.log.Info().Str("client_id", client.id).Msg("Client disconnected")
		case <-ctx.Done():
			close(h.stopped)
			h.mu.Lock()
			for id, c := range h.clients {
				c.close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Emit sends a fileStatus event to one client. It blocks while the client's
// send buffer is full and fails with ErrClientGone once the client has left.
func (h *Hub) Emit(ctx context.Context, clientID string, status models.FileStatus) error {
	return h.Send(ctx, clientID, EventFileStatus, status)
}

// Send delivers an arbitrary event to one client.
func (h *Hub) Send(ctx context.Context, clientID, event string, data any) error {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return err
	}
	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return ErrClientGone
	}
	select {
	case client.send <- msg:
		return nil
	case <-client.done:
		return ErrClientGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
