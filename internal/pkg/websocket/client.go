package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Outbound frames buffered per client before it is dropped
	sendBufferSize = 256
)

// Frame is an inbound client envelope whose data is decoded per event
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// FrameHandler dispatches inbound frames for a client
type FrameHandler interface {
	HandleFrame(client *Client, frame Frame)
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages. Only the hub writes to or closes it.
	send chan []byte

	// Authenticated user behind this connection
	userID int64

	handler FrameHandler

	// Throttles send_message frames
	limiter *rate.Limiter

	logger zerolog.Logger
}

// NewClient creates a client bound to an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, handler FrameHandler, limiter *rate.Limiter, logger zerolog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		userID:  userID,
		handler: handler,
		limiter: limiter,
		logger:  logger.With().Int64("userID", userID).Logger(),
	}
}

// UserID returns the authenticated user of the connection
func (c *Client) UserID() int64 {
	return c.userID
}

// Allow reports whether the client may send another chat message now.
func (c *Client) Allow() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// Emit sends an event to this client only
func (c *Client) Emit(event string, data interface{}) error {
	return c.hub.Emit(c, event, data)
}

// EmitError sends an error event carrying a client-facing message
func (c *Client) EmitError(message string) {
	if err := c.Emit(EventError, map[string]string{"message": message}); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to emit error event")
	}
}

// readPump pumps frames from the websocket connection to the frame handler
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil || frame.Event == "" {
			c.logger.Debug().
				Err(err).
				Str("message", string(message)).
				Msg("Failed to unmarshal client frame")
			c.EmitError("Malformed message")
			continue
		}

		c.handler.HandleFrame(c, frame)
	}
}

// writePump pumps messages from the hub to the websocket connection. Each
// envelope is written as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// newUpgrader builds an upgrader that accepts the configured browser origins.
// An empty list or "*" accepts any origin.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}
