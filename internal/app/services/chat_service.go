package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/validation"
	"github.com/peerconnect/api/internal/pkg/websocket"
)

// DefaultMentionTimeout bounds one message's mention processing
const DefaultMentionTimeout = 30 * time.Second

// ChatService defines the interface for chat operations
type ChatService interface {
	CheckActivity(ctx context.Context, activityID int64) error
	GetHistory(ctx context.Context, activityID int64) ([]dto.ChatMessageResponse, error)
	SendMessage(ctx context.Context, activityID, senderID int64, content string) (*dto.ChatMessageResponse, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	chatRepo       repositories.IChatRepository
	activityRepo   repositories.IActivityRepository
	userRepo       repositories.IUserRepository
	notifications  NotificationService
	broadcaster    Broadcaster
	mentionTimeout time.Duration
	// async runs mention processing off the sender's path
	async  func(func())
	logger zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	chatRepo repositories.IChatRepository,
	activityRepo repositories.IActivityRepository,
	userRepo repositories.IUserRepository,
	notifications NotificationService,
	broadcaster Broadcaster,
	mentionTimeout time.Duration,
	logger zerolog.Logger,
) ChatService {
	if mentionTimeout <= 0 {
		mentionTimeout = DefaultMentionTimeout
	}
	return &chatServiceImpl{
		chatRepo:       chatRepo,
		activityRepo:   activityRepo,
		userRepo:       userRepo,
		notifications:  notifications,
		broadcaster:    broadcaster,
		mentionTimeout: mentionTimeout,
		async:          func(fn func()) { go fn() },
		logger:         logger,
	}
}

// CheckActivity reports whether the activity exists, mapped to a not-found error
func (s *chatServiceImpl) CheckActivity(ctx context.Context, activityID int64) error {
	_, err := s.loadActivity(ctx, activityID)
	return err
}

// GetHistory returns the full chat of an activity, oldest first
func (s *chatServiceImpl) GetHistory(ctx context.Context, activityID int64) ([]dto.ChatMessageResponse, error) {
	if _, err := s.loadActivity(ctx, activityID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.ListByActivity(ctx, activityID)
	if err != nil {
		s.logger.Error().Err(err).Int64("activityID", activityID).Msg("Failed to get chat history")
		return nil, err
	}
	return dto.ToChatMessageResponses(messages), nil
}

// SendMessage stores the message, broadcasts it to the activity room and
// then hands it to mention processing in the background.
func (s *chatServiceImpl) SendMessage(ctx context.Context, activityID, senderID int64, content string) (*dto.ChatMessageResponse, error) {
	// Whitespace-only is rejected; content is otherwise stored as sent
	if !validation.IsNotBlank(content) {
		return nil, apperrors.NewValidationError("Message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > validation.MessageMaxLength {
		return nil, apperrors.NewValidationError("Message is too long")
	}

	activity, err := s.loadActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		s.logger.Error().Err(err).Int64("senderID", senderID).Msg("Failed to load message sender")
		return nil, err
	}

	message := &models.ChatMessage{
		ActivityID: activityID,
		SenderID:   senderID,
		Content:    content,
	}
	if err := s.chatRepo.Create(ctx, message); err != nil {
		s.logger.Error().Err(err).Int64("activityID", activityID).Int64("senderID", senderID).Msg("Failed to store chat message")
		return nil, err
	}
	summary := sender.Summary()
	message.Sender = &summary

	resp := dto.ToChatMessageResponse(message)
	if err := s.broadcaster.BroadcastToActivity(activityID, websocket.EventReceiveMessage, resp); err != nil {
		s.logger.Warn().Err(err).Int64("activityID", activityID).Msg("Chat broadcast not delivered")
	}

	s.async(func() {
		s.processMentions(activity.ID, sender, message.Content)
	})

	return &resp, nil
}

// processMentions runs detached from the request or connection that sent the
// message, with its own deadline.
func (s *chatServiceImpl) processMentions(activityID int64, sender *models.User, content string) {
	if !strings.Contains(content, "@") {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.mentionTimeout)
	defer cancel()

	// Membership may have changed since the message was accepted.
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("activityID", activityID).Msg("Activity gone before mention processing")
		return
	}

	if _, err := s.notifications.NotifyMentions(ctx, activity, sender, content); err != nil {
		s.logger.Error().Err(err).Int64("activityID", activity.ID).Int64("senderID", sender.ID).Msg("Mention processing failed")
	}
}

func (s *chatServiceImpl) loadActivity(ctx context.Context, activityID int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrActivityNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Activity not found")
		}
		s.logger.Error().Err(err).Int64("activityID", activityID).Msg("Failed to load activity for chat")
		return nil, err
	}
	return activity, nil
}
