package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/helpers"
)

const frameTimeout = 10 * time.Second

// ChatService is the chat behaviour the socket layer needs
type ChatService interface {
	CheckActivity(ctx context.Context, activityID int64) error
	GetHistory(ctx context.Context, activityID int64) ([]dto.ChatMessageResponse, error)
	SendMessage(ctx context.Context, activityID, senderID int64, content string) (*dto.ChatMessageResponse, error)
}

// sendMessagePayload accepts ids in any of the shapes helpers.ExtractID understands
type sendMessagePayload struct {
	ActivityID interface{} `json:"activityId"`
	SenderID   interface{} `json:"senderId"`
	Content    string      `json:"content"`
}

// MessageHandler routes client frames to the hub and the chat service
type MessageHandler struct {
	hub    *Hub
	chat   ChatService
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(hub *Hub, chat ChatService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		hub:    hub,
		chat:   chat,
		logger: logger,
	}
}

// HandleFrame implements FrameHandler
func (h *MessageHandler) HandleFrame(client *Client, frame Frame) {
	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	switch frame.Event {
	case EventJoinUserRoom:
		h.joinUserRoom(client, frame.Data)
	case EventJoinRoom:
		h.joinActivityRoom(ctx, client, frame.Data)
	case EventSendMessage:
		h.sendMessage(ctx, client, frame.Data)
	default:
		h.logger.Debug().Str("event", frame.Event).Int64("userID", client.UserID()).Msg("Unknown websocket event")
		client.EmitError("Unknown event")
	}
}

func (h *MessageHandler) joinUserRoom(client *Client, data json.RawMessage) {
	userID, err := helpers.ExtractID(data)
	if err != nil {
		client.EmitError("Invalid user id")
		return
	}
	if userID != client.UserID() {
		h.logger.Warn().
			Int64("userID", client.UserID()).
			Int64("requestedUserID", userID).
			Msg("Rejected join of another user's room")
		client.EmitError("Cannot join another user's room")
		return
	}

	if err := h.hub.Join(client, UserRoom(userID)); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to join user room")
	}
}

func (h *MessageHandler) joinActivityRoom(ctx context.Context, client *Client, data json.RawMessage) {
	activityID, err := helpers.ExtractID(data)
	if err != nil {
		client.EmitError("Invalid activity id")
		return
	}

	if err := h.chat.CheckActivity(ctx, activityID); err != nil {
		h.logger.Debug().Err(err).Int64("activityID", activityID).Msg("Rejected join of activity room")
		client.EmitError(apperrors.MessageOf(err, "Failed to join activity room"))
		return
	}

	// Subscribe before reading history: a message sent in between may arrive
	// twice but is never lost.
	if err := h.hub.Join(client, ActivityRoom(activityID)); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to join activity room")
		return
	}

	history, err := h.chat.GetHistory(ctx, activityID)
	if err != nil {
		h.logger.Debug().Err(err).Int64("activityID", activityID).Msg("Failed to load chat history")
		client.EmitError(apperrors.MessageOf(err, "Failed to load chat history"))
		return
	}

	if history == nil {
		history = []dto.ChatMessageResponse{}
	}
	if err := client.Emit(EventChatHistory, history); err != nil {
		h.logger.Debug().Err(err).Int64("activityID", activityID).Msg("Failed to emit chat history")
	}
}

func (h *MessageHandler) sendMessage(ctx context.Context, client *Client, data json.RawMessage) {
	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.EmitError("Invalid message payload")
		return
	}

	activityID, err := helpers.ExtractID(payload.ActivityID)
	if err != nil {
		client.EmitError("Invalid activity id")
		return
	}

	if !client.Allow() {
		client.EmitError("You are sending messages too quickly")
		return
	}

	// The sender is always the authenticated user, whatever the payload claims.
	if _, err := h.chat.SendMessage(ctx, activityID, client.UserID(), payload.Content); err != nil {
		h.logger.Error().
			Err(err).
			Int64("activityID", activityID).
			Int64("userID", client.UserID()).
			Msg("Failed to send chat message")
		client.EmitError(apperrors.MessageOf(err, "Failed to send message"))
	}
}
