package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ActivityRepository     *ActivityRepository
	ChatRepository         *ChatRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		ActivityRepository:     NewActivityRepository(db),
		ChatRepository:         NewChatRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
