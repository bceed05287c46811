package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/peerconnect/api/internal/app/models/dto"
)

// HandlerConfig tunes connection handling
type HandlerConfig struct {
	AllowedOrigins []string
	// MessagesPerSecond and MessageBurst bound send_message frames per connection.
	// A zero rate disables throttling.
	MessagesPerSecond float64
	MessageBurst      int
}

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	frames   FrameHandler
	upgrader websocket.Upgrader
	config   HandlerConfig
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, frames FrameHandler, config HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		frames:   frames,
		upgrader: newUpgrader(config.AllowedOrigins),
		config:   config,
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Establish a WebSocket connection for chat and notifications
// @Description Upgrades the HTTP connection. The token may be passed as the token query parameter.
// @Tags websocket
// @Security BearerAuth
// @Param token query string false "JWT access token"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized: JWT token missing or invalid"
// @Router /ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDValue, exists := c.Get("userID")
	userID, ok := userIDValue.(int64)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User ID not found in context")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	var limiter *rate.Limiter
	if h.config.MessagesPerSecond > 0 {
		burst := h.config.MessageBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(h.config.MessagesPerSecond), burst)
	}

	client := NewClient(h.hub, conn, userID, h.frames, limiter, h.logger)
	if err := h.hub.Register(client); err != nil {
		h.logger.Warn().Err(err).Int64("userID", userID).Msg("Rejecting WebSocket connection")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
