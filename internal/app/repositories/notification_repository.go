package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/pkg/apperrors"
)

// INotificationRepository defines the interface for notification storage
type INotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, recipientID int64) (int64, error)
}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an unread notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationTypeMention
	}

	sql, args, err := r.sb.Insert("notifications").
		Columns("recipient_id", "sender_id", "activity_id", "type", "is_read").
		Values(n.RecipientID, n.SenderID, n.ActivityID, string(n.Type), n.Read).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// GetByID retrieves a bare notification row
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	sql, args, err := r.sb.Select("id", "recipient_id", "sender_id", "activity_id", "type", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var (
		n     models.Notification
		ntype string
	)
	err = r.db.QueryRow(ctx, sql, args...).
		Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.ActivityID, &ntype, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error getting notification: %w", err)
	}
	n.Type = models.NotificationType(ntype)
	return &n, nil
}

// ListByRecipient returns the recipient's notifications newest first, with the
// sender summary and activity title joined in.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Notification, error) {
	sql, args, err := r.sb.Select(
		"n.id", "n.recipient_id", "n.sender_id", "n.activity_id", "n.type", "n.is_read", "n.created_at",
		"u.name", "u.avatar", "a.title",
	).
		From("notifications n").
		Join("users u ON n.sender_id = u.id").
		Join("activities a ON n.activity_id = a.id").
		Where(squirrel.Eq{"n.recipient_id": recipientID}).
		OrderBy("n.created_at DESC", "n.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	list := []*models.Notification{}
	for rows.Next() {
		var (
			n      models.Notification
			ntype  string
			sender models.UserSummary
		)
		err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.ActivityID, &ntype, &n.Read, &n.CreatedAt,
			&sender.Name, &sender.Avatar, &n.ActivityTitle)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		n.Type = models.NotificationType(ntype)
		sender.ID = n.SenderID
		n.Sender = &sender
		list = append(list, &n)
	}
	return list, rows.Err()
}

// CountUnread returns how many unread notifications the recipient has
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"recipient_id": recipientID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting notifications: %w", err)
	}
	return count, nil
}

// MarkRead sets read on a single notification
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient and returns the count
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	sql, args, err := r.sb.Update("notifications").
		Set("is_read", true).
		Where(squirrel.Eq{"recipient_id": recipientID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a single notification
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("notifications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// DeleteAll removes every notification of the recipient
func (r *NotificationRepository) DeleteAll(ctx context.Context, recipientID int64) (int64, error) {
	sql, args, err := r.sb.Delete("notifications").
		Where(squirrel.Eq{"recipient_id": recipientID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
