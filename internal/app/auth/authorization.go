package auth

import (
	"context"
	"errors"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/logger"
)

// AuthorizationService answers ownership questions: only an activity's
// creator may change it, and only a notification's recipient may touch it.
type AuthorizationService struct {
	activityRepo     repositories.IActivityRepository
	notificationRepo repositories.INotificationRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(activityRepo repositories.IActivityRepository, notificationRepo repositories.INotificationRepository) *AuthorizationService {
	return &AuthorizationService{
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
	}
}

// AuthorizeActivityOwner loads the activity and fails with a forbidden error
// unless userID created it.
func (s *AuthorizationService) AuthorizeActivityOwner(ctx context.Context, activityID, userID int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrActivityNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Activity not found")
		}
		logger.Error().Err(err).Int64("activityID", activityID).Msg("Error getting activity in AuthorizeActivityOwner")
		return nil, err
	}

	if !activity.IsCreator(userID) {
		return nil, apperrors.NewForbiddenError("Only the creator can modify this activity")
	}
	return activity, nil
}

// AuthorizeNotificationRecipient loads the notification and fails with a
// forbidden error unless userID is its recipient.
func (s *AuthorizationService) AuthorizeNotificationRecipient(ctx context.Context, notificationID, userID int64) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotificationNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Notification not found")
		}
		logger.Error().Err(err).Int64("notificationID", notificationID).Msg("Error getting notification in AuthorizeNotificationRecipient")
		return nil, err
	}

	if n.RecipientID != userID {
		return nil, apperrors.NewForbiddenError("Not authorized")
	}
	return n, nil
}
