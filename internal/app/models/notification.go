package models

import "time"

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotificationTypeMention NotificationType = "mention"
)

// Notification is a per-recipient record of being mentioned in an activity chat
type Notification struct {
	ID          int64            `json:"id" db:"id"`
	RecipientID int64            `json:"recipientId" db:"recipient_id"`
	SenderID    int64            `json:"senderId" db:"sender_id"`
	ActivityID  int64            `json:"activityId" db:"activity_id"`
	Type        NotificationType `json:"type" db:"type"`
	Read        bool             `json:"read" db:"is_read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`

	// Related entities
	Sender        *UserSummary `json:"sender,omitempty"`
	ActivityTitle string       `json:"activityTitle,omitempty"`
}
