// Package websocket pushes change events to connected browsers.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/logger"
)

// message is a payload addressed to one user, or to everyone when userID is 0.
type message struct {
	userID int64
	data   []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	log        logger.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set; all membership changes go through it.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.userID != 0 && client.userID != msg.userID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// BroadcastJSON sends v to every connected client.
func (h *Hub) BroadcastJSON(v interface{}) {
	h.SendJSON(0, v)
}

// SendJSON sends v to the connections of one user.
func (h *Hub) SendJSON(userID int64, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("Failed to marshal websocket message", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- message{userID: userID, data: data}:
	case <-h.done:
	}
}

// Forward relays bus events to their users until the bus closes the
// subscription or the hub stops.
func (h *Hub) Forward(bus *events.Bus) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case e, ok := <-sub.C:
				if !ok {
					return
				}
				h.SendJSON(e.UserID, e)
			case <-h.done:
				return
			}
		}
	}()
}
