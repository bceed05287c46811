package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHubStopped is returned when the hub loop is no longer running.
var ErrHubStopped = errors.New("websocket hub stopped")

// Server to client events
const (
	EventChatHistory     = "chat_history"
	EventReceiveMessage  = "receive_message"
	EventNewNotification = "new_notification"
	EventError           = "error"
)

// Client to server events
const (
	EventJoinUserRoom = "join_user_room"
	EventJoinRoom     = "join_room"
	EventSendMessage  = "send_message"
)

// Envelope is the JSON frame exchanged in both directions
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// ActivityRoom is the room name for an activity's chat.
func ActivityRoom(activityID int64) string {
	return "activity:" + strconv.FormatInt(activityID, 10)
}

// UserRoom is the personal room a user receives notifications in.
func UserRoom(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

type subscription struct {
	client *Client
	room   string
	// closed by the Run goroutine once the membership change is applied
	applied chan struct{}
}

type roomMessage struct {
	room    string
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and the rooms they joined. All
// membership changes and deliveries happen on the Run goroutine.
type Hub struct {
	// Registered clients and the rooms each one joined
	clients map[*Client]map[string]bool

	// Room name to member clients
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	broadcast  chan roomMessage
	direct     chan directMessage

	// Closed when Run returns
	done chan struct{}

	// Guards clients and rooms for the read-only accessors
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]map[string]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		broadcast:  make(chan roomMessage),
		direct:     make(chan directMessage),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	h.logger.Info().Msg("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			h.logger.Info().Msg("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case sub := <-h.join:
			h.joinRoom(sub)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)

		case msg := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[msg.client]
			h.mu.RUnlock()
			if ok {
				h.deliver(msg.client, msg.payload)
			}
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = make(map[string]bool)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Int("clients", count).
		Msg("Client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[client]
	if !ok {
		return
	}
	for room := range joined {
		delete(h.rooms[room], client)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clients, client)
	close(client.send)

	h.logger.Info().
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

func (h *Hub) joinRoom(sub subscription) {
	defer close(sub.applied)

	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.clients[sub.client]
	if !ok {
		return
	}
	if _, ok := h.rooms[sub.room]; !ok {
		h.rooms[sub.room] = make(map[*Client]bool)
	}
	h.rooms[sub.room][sub.client] = true
	joined[sub.room] = true

	h.logger.Debug().
		Int64("userID", sub.client.userID).
		Str("room", sub.room).
		Msg("Client joined room")
}

func (h *Hub) broadcastToRoom(msg roomMessage) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[msg.room]))
	for client := range h.rooms[msg.room] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	if len(members) == 0 {
		h.logger.Debug().Str("room", msg.room).Msg("No clients in room for broadcast")
		return
	}

	for _, client := range members {
		h.deliver(client, msg.payload)
	}

	h.logger.Debug().
		Str("room", msg.room).
		Int("clientCount", len(members)).
		Msg("Message broadcasted to room")
}

// deliver queues payload on the client, dropping the client if its buffer is full.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.logger.Warn().
			Int64("userID", client.userID).
			Msg("Client send buffer full, disconnecting")
		h.removeClient(client)
	}
}

func (h *Hub) shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.removeClient(client)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Join subscribes a client to a room. It returns once the hub has applied the change,
// so broadcasts issued after Join returns reach the client.
func (h *Hub) Join(client *Client, room string) error {
	sub := subscription{client: client, room: room, applied: make(chan struct{})}
	select {
	case h.join <- sub:
	case <-h.done:
		return ErrHubStopped
	}

	select {
	case <-sub.applied:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Emit sends an event to a single client.
func (h *Hub) Emit(client *Client, event string, data interface{}) error {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	select {
	case h.direct <- directMessage{client: client, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// BroadcastToRoom sends an event to every member of room.
func (h *Hub) BroadcastToRoom(room, event string, data interface{}) error {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("room", room).Msg("Failed to marshal message for broadcast")
		return err
	}

	select {
	case h.broadcast <- roomMessage{room: room, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// BroadcastToActivity sends an event to everyone in an activity's chat room.
func (h *Hub) BroadcastToActivity(activityID int64, event string, data interface{}) error {
	return h.BroadcastToRoom(ActivityRoom(activityID), event, data)
}

// PushToUser sends an event to a user's personal room.
func (h *Hub) PushToUser(userID int64, event string, data interface{}) error {
	return h.BroadcastToRoom(UserRoom(userID), event, data)
}

// GetClientsCount returns the number of connected clients in a room
func (h *Hub) GetClientsCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}
