package dto

import (
	"time"

	"github.com/peerconnect/api/internal/app/models"
)

// NotificationActivity is the activity a notification points at
type NotificationActivity struct {
	ID    int64  `json:"id" example:"1"`
	Title string `json:"title" example:"Evening football"`
}

// NotificationResponse represents a notification in the recipient's list
type NotificationResponse struct {
	ID        int64                `json:"id" example:"1"`
	Type      string               `json:"type" example:"mention"`
	Read      bool                 `json:"read" example:"false"`
	Sender    models.UserSummary   `json:"sender"`
	Activity  NotificationActivity `json:"activity"`
	CreatedAt time.Time            `json:"createdAt"`
}

// UnreadCountResponse feeds the notification badge
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"2"`
}

// NewNotificationEvent is pushed to the recipient's personal room
type NewNotificationEvent struct {
	NotificationID int64  `json:"notificationId"`
	Type           string `json:"type"`
	ActivityID     int64  `json:"activityId"`
	ActivityTitle  string `json:"activityTitle"`
	SenderID       int64  `json:"senderId"`
	SenderName     string `json:"senderName"`
}

// ToNotificationResponse converts a Notification model
func ToNotificationResponse(n *models.Notification) NotificationResponse {
	sender := models.UserSummary{ID: n.SenderID}
	if n.Sender != nil {
		sender = *n.Sender
	}
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Read:      n.Read,
		Sender:    sender,
		Activity:  NotificationActivity{ID: n.ActivityID, Title: n.ActivityTitle},
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice, never returning nil
func ToNotificationResponses(list []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, ToNotificationResponse(n))
	}
	return out
}
