package services

// Services defined in this package:
// - AuthService: registration, email verification, login and the caller's profile
// - ActivityService: activity CRUD plus join/leave through the waitlist engine
// - ChatService: activity chat history and sending, which triggers mention fan-out
// - NotificationService: mention fan-out and the recipient's notification inbox

// Broadcaster delivers real-time events. *websocket.Hub implements it.
type Broadcaster interface {
	BroadcastToActivity(activityID int64, event string, data interface{}) error
	PushToUser(userID int64, event string, data interface{}) error
}
