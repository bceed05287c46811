package services

import (
	"context"

	"github.com/rs/zerolog"

	appauth "github.com/peerconnect/api/internal/app/auth"
	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/pkg/email"
	"github.com/peerconnect/api/internal/pkg/websocket"
)

// NotificationService defines the interface for notification operations
type NotificationService interface {
	NotifyMentions(ctx context.Context, activity *models.Activity, sender *models.User, content string) (int, error)
	List(ctx context.Context, userID int64) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID int64) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, notificationID, userID int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	userRepo         repositories.IUserRepository
	authz            *appauth.AuthorizationService
	emailService     email.EmailService
	broadcaster      Broadcaster
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.INotificationRepository,
	userRepo repositories.IUserRepository,
	authz *appauth.AuthorizationService,
	emailService email.EmailService,
	broadcaster Broadcaster,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		authz:            authz,
		emailService:     emailService,
		broadcaster:      broadcaster,
		logger:           logger,
	}
}

// NotifyMentions scans content for "@name" of every current participant other
// than the sender. Each match gets a stored notification, a mention email and
// a push into their personal room. Email and push failures are only logged.
// It returns how many notifications were stored.
func (s *notificationServiceImpl) NotifyMentions(ctx context.Context, activity *models.Activity, sender *models.User, content string) (int, error) {
	participants, err := s.userRepo.GetByIDs(ctx, activity.Participants)
	if err != nil {
		s.logger.Error().Err(err).Int64("activityID", activity.ID).Msg("Failed to load participants for mention scan")
		return 0, err
	}

	created := 0
	for _, recipient := range FindMentioned(content, sender.ID, participants) {
		n := &models.Notification{
			RecipientID: recipient.ID,
			SenderID:    sender.ID,
			ActivityID:  activity.ID,
			Type:        models.NotificationTypeMention,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			s.logger.Error().Err(err).
				Int64("activityID", activity.ID).
				Int64("recipientID", recipient.ID).
				Msg("Failed to store mention notification")
			continue
		}
		created++

		if err := s.emailService.SendMentionEmail(recipient.Email, sender.Name); err != nil {
			s.logger.Warn().Err(err).Int64("recipientID", recipient.ID).Msg("Mention email not sent")
		}

		event := dto.NewNotificationEvent{
			NotificationID: n.ID,
			Type:           string(n.Type),
			ActivityID:     activity.ID,
			ActivityTitle:  activity.Title,
			SenderID:       sender.ID,
			SenderName:     sender.Name,
		}
		if err := s.broadcaster.PushToUser(recipient.ID, websocket.EventNewNotification, event); err != nil {
			s.logger.Warn().Err(err).Int64("recipientID", recipient.ID).Msg("Mention push not delivered")
		}
	}

	if created > 0 {
		s.logger.Info().Int64("activityID", activity.ID).Int64("senderID", sender.ID).Int("count", created).Msg("Mention notifications created")
	}
	return created, nil
}

// List returns the user's notifications newest first
func (s *notificationServiceImpl) List(ctx context.Context, userID int64) ([]dto.NotificationResponse, error) {
	list, err := s.notificationRepo.ListByRecipient(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to list notifications")
		return nil, err
	}
	return dto.ToNotificationResponses(list), nil
}

// UnreadCount returns the number of unread notifications
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID int64) (*dto.UnreadCountResponse, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to count unread notifications")
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

// MarkRead marks one of the caller's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, userID int64) error {
	if _, err := s.authz.AuthorizeNotificationRecipient(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

// MarkAllRead marks all the caller's unread notifications as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// Delete removes one of the caller's notifications
func (s *notificationServiceImpl) Delete(ctx context.Context, notificationID, userID int64) error {
	if _, err := s.authz.AuthorizeNotificationRecipient(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}

// DeleteAll removes every notification of the caller
func (s *notificationServiceImpl) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	return s.notificationRepo.DeleteAll(ctx, userID)
}
