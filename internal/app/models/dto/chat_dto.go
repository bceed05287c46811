package dto

import (
	"time"

	"github.com/peerconnect/api/internal/app/models"
)

// ChatMessageResponse represents a chat message as delivered to clients
type ChatMessageResponse struct {
	ID         int64               `json:"id" example:"1"`
	ActivityID int64               `json:"activityId" example:"1"`
	SenderID   int64               `json:"senderId" example:"1"`
	Sender     *models.UserSummary `json:"sender,omitempty"`
	Content    string              `json:"content" example:"See you at 6!"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ToChatMessageResponse converts a ChatMessage model to ChatMessageResponse DTO
func ToChatMessageResponse(message *models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:         message.ID,
		ActivityID: message.ActivityID,
		SenderID:   message.SenderID,
		Sender:     message.Sender,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt,
	}
}

// ToChatMessageResponses converts a slice, never returning nil
func ToChatMessageResponses(messages []*models.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, ToChatMessageResponse(m))
	}
	return out
}
