package models

import "time"

// ChatMessage represents an immutable message in an activity chat
type ChatMessage struct {
	ID         int64     `json:"id" db:"id"`
	ActivityID int64     `json:"activityId" db:"activity_id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Related entities
	Sender *UserSummary `json:"sender,omitempty"`
}
