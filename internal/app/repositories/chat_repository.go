package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peerconnect/api/internal/app/models"
)

// IChatRepository defines the interface for chat message storage
type IChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByActivity(ctx context.Context, activityID int64) ([]*models.ChatMessage, error)
}

// ChatRepository handles database operations for chat messages
type ChatRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new chat message and fills in its id and created_at
func (r *ChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	sql, args, err := r.sb.Insert("chat_messages").
		Columns("activity_id", "sender_id", "content").
		Values(message.ActivityID, message.SenderID, message.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&message.ID, &message.CreatedAt); err != nil {
		return fmt.Errorf("error creating chat message: %w", err)
	}
	return nil
}

// ListByActivity returns the whole history of an activity chat, oldest first,
// with the sender's name and avatar attached.
func (r *ChatRepository) ListByActivity(ctx context.Context, activityID int64) ([]*models.ChatMessage, error) {
	sql, args, err := r.sb.Select(
		"cm.id", "cm.activity_id", "cm.sender_id", "cm.content", "cm.created_at",
		"u.name", "u.avatar",
	).
		From("chat_messages cm").
		LeftJoin("users u ON cm.sender_id = u.id").
		Where(squirrel.Eq{"cm.activity_id": activityID}).
		OrderBy("cm.created_at ASC", "cm.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying chat messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.ChatMessage{}
	for rows.Next() {
		var (
			m      models.ChatMessage
			name   *string
			avatar *string
		)
		if err := rows.Scan(&m.ID, &m.ActivityID, &m.SenderID, &m.Content, &m.CreatedAt, &name, &avatar); err != nil {
			return nil, fmt.Errorf("error scanning chat message: %w", err)
		}
		if name != nil {
			m.Sender = &models.UserSummary{ID: m.SenderID, Name: *name, Avatar: avatar}
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
