package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/peerconnect/api/internal/app/auth"
	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/app/waitlist"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/validation"
)

// MaxMembershipAttempts bounds the reload-and-retry loop around a join or leave
const MaxMembershipAttempts = 5

// ActivityService defines the interface for activity operations
type ActivityService interface {
	ListByCollege(ctx context.Context, college string) ([]dto.ActivityResponse, error)
	Create(ctx context.Context, creatorID int64, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error)
	Join(ctx context.Context, activityID, userID int64) (*dto.JoinActivityResponse, error)
	Leave(ctx context.Context, activityID, userID int64) (*dto.LeaveActivityResponse, error)
	Update(ctx context.Context, activityID, userID int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error)
	Delete(ctx context.Context, activityID, userID int64) error
}

// activityServiceImpl implements ActivityService
type activityServiceImpl struct {
	activityRepo repositories.IActivityRepository
	userRepo     repositories.IUserRepository
	authz        *appauth.AuthorizationService
	logger       zerolog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	activityRepo repositories.IActivityRepository,
	userRepo repositories.IUserRepository,
	authz *appauth.AuthorizationService,
	logger zerolog.Logger,
) ActivityService {
	return &activityServiceImpl{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		authz:        authz,
		logger:       logger,
	}
}

// ListByCollege returns a college's activities soonest first with creators resolved
func (s *activityServiceImpl) ListByCollege(ctx context.Context, college string) ([]dto.ActivityResponse, error) {
	college = strings.TrimSpace(college)
	if college == "" {
		return nil, apperrors.NewValidationError("College is required")
	}

	activities, err := s.activityRepo.ListByCollege(ctx, college)
	if err != nil {
		s.logger.Error().Err(err).Str("college", college).Msg("Failed to list activities")
		return nil, err
	}

	ids := make([]int64, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.CreatorID)
	}
	users, err := s.userRepo.GetSummaries(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to resolve activity creators")
		return nil, err
	}

	out := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, dto.ToActivityResponse(a, users))
	}
	return out, nil
}

// Create stores a new activity in the creator's college with the creator as
// its first participant.
func (s *activityServiceImpl) Create(ctx context.Context, creatorID int64, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, err
	}

	if !validation.IsActivityCategory(req.Category) {
		return nil, apperrors.NewValidationError("Invalid category")
	}
	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid date, expected YYYY-MM-DD")
	}
	if req.Capacity < 1 {
		return nil, apperrors.NewValidationError("Capacity must be at least 1")
	}

	activity := &models.Activity{
		Title:        strings.TrimSpace(req.Title),
		Category:     models.ActivityCategory(req.Category),
		Date:         date,
		Time:         strings.TrimSpace(req.Time),
		Location:     strings.TrimSpace(req.Location),
		Description:  req.Description,
		Capacity:     req.Capacity,
		College:      creator.College,
		CreatorID:    creator.ID,
		Participants: []int64{creator.ID},
		Waitlist:     []int64{},
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Error().Err(err).Int64("creatorID", creatorID).Msg("Failed to create activity")
		return nil, err
	}

	s.logger.Info().Int64("activityID", activity.ID).Int64("creatorID", creatorID).Msg("Activity created")

	resp := dto.ToActivityResponse(activity, map[int64]models.UserSummary{creator.ID: creator.Summary()})
	return &resp, nil
}

// GetByID returns one activity with creator, participants and waitlist resolved
func (s *activityServiceImpl) GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, activity)
}

// Join seats the user or appends them to the waitlist
func (s *activityServiceImpl) Join(ctx context.Context, activityID, userID int64) (*dto.JoinActivityResponse, error) {
	var status waitlist.Status
	err := s.mutateMembership(ctx, activityID, func(a *models.Activity) error {
		var err error
		status, err = waitlist.Join(a, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("activityID", activityID).Int64("userID", userID).Str("status", string(status)).Msg("User joined activity")

	message := "Joined successfully"
	if status == waitlist.StatusWaitlisted {
		message = "Activity is full, added to waitlist"
	}
	return &dto.JoinActivityResponse{Message: message, Status: string(status)}, nil
}

// Leave removes the user, promoting the head of the waitlist into a freed seat
func (s *activityServiceImpl) Leave(ctx context.Context, activityID, userID int64) (*dto.LeaveActivityResponse, error) {
	var result waitlist.LeaveResult
	err := s.mutateMembership(ctx, activityID, func(a *models.Activity) error {
		var err error
		result, err = waitlist.Leave(a, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	evt := s.logger.Info().Int64("activityID", activityID).Int64("userID", userID)
	if result.Promoted != nil {
		evt = evt.Int64("promotedUserID", *result.Promoted)
	}
	evt.Msg("User left activity")

	message := "Left successfully"
	if result.FromWaitlist {
		message = "Removed from waitlist"
	}
	return &dto.LeaveActivityResponse{Message: message, PromotedUserID: result.Promoted}, nil
}

// mutateMembership runs fn against a fresh copy of the activity and stores the
// result only if nobody else changed the row in between.
func (s *activityServiceImpl) mutateMembership(ctx context.Context, activityID int64, fn func(*models.Activity) error) error {
	for attempt := 1; attempt <= MaxMembershipAttempts; attempt++ {
		current, err := s.load(ctx, activityID)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return membershipError(err)
		}

		ok, err := s.activityRepo.UpdateMembership(ctx, next, current.Version)
		if err != nil {
			s.logger.Error().Err(err).Int64("activityID", activityID).Msg("Failed to store activity membership")
			return err
		}
		if ok {
			return nil
		}

		s.logger.Debug().Int64("activityID", activityID).Int("attempt", attempt).Msg("Activity version moved, retrying")
	}

	s.logger.Warn().Int64("activityID", activityID).Msg("Gave up on activity membership update")
	return apperrors.NewCustomError(apperrors.ErrConcurrentUpdate, "Activity is busy, please try again")
}

func membershipError(err error) error {
	switch {
	case errors.Is(err, waitlist.ErrAlreadyJoined):
		return apperrors.NewCustomError(apperrors.ErrConflict, "Already joined").WithDetails(map[string]interface{}{"reason": err.Error()})
	case errors.Is(err, waitlist.ErrAlreadyWaitlisted):
		return apperrors.NewCustomError(apperrors.ErrConflict, "Already on waitlist").WithDetails(map[string]interface{}{"reason": err.Error()})
	case errors.Is(err, waitlist.ErrNotJoined):
		return apperrors.NewCustomError(apperrors.ErrConflict, "Not joined").WithDetails(map[string]interface{}{"reason": err.Error()})
	default:
		return err
	}
}

// Update applies the creator's edits. Lowering capacity below the number of
// participants is allowed; nobody is demoted.
func (s *activityServiceImpl) Update(ctx context.Context, activityID, userID int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	activity, err := s.authz.AuthorizeActivityOwner(ctx, activityID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		activity.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		if !validation.IsActivityCategory(*req.Category) {
			return nil, apperrors.NewValidationError("Invalid category")
		}
		activity.Category = models.ActivityCategory(*req.Category)
	}
	if req.Date != nil {
		date, err := validation.ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("Invalid date, expected YYYY-MM-DD")
		}
		activity.Date = date
	}
	if req.Time != nil {
		activity.Time = strings.TrimSpace(*req.Time)
	}
	if req.Location != nil {
		activity.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, apperrors.NewValidationError("Capacity must be at least 1")
		}
		activity.Capacity = *req.Capacity
	}

	if err := s.activityRepo.UpdateDetails(ctx, activity); err != nil {
		if errors.Is(err, apperrors.ErrActivityNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Activity not found")
		}
		s.logger.Error().Err(err).Int64("activityID", activityID).Msg("Failed to update activity")
		return nil, err
	}

	if over := waitlist.Overflow(activity); over > 0 {
		s.logger.Info().Int64("activityID", activityID).Int("overflow", over).Msg("Capacity set below participant count")
	}

	return s.populate(ctx, activity)
}

// Delete removes the activity together with its chat and notifications
func (s *activityServiceImpl) Delete(ctx context.Context, activityID, userID int64) error {
	if _, err := s.authz.AuthorizeActivityOwner(ctx, activityID, userID); err != nil {
		return err
	}

	if err := s.activityRepo.Delete(ctx, activityID); err != nil {
		if errors.Is(err, apperrors.ErrActivityNotFound) {
			return apperrors.NewResourceNotFoundError("Activity not found")
		}
		s.logger.Error().Err(err).Int64("activityID", activityID).Msg("Failed to delete activity")
		return err
	}

	s.logger.Info().Int64("activityID", activityID).Int64("userID", userID).Msg("Activity deleted")
	return nil
}

func (s *activityServiceImpl) load(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrActivityNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Activity not found")
		}
		s.logger.Error().Err(err).Int64("activityID", id).Msg("Failed to load activity")
		return nil, fmt.Errorf("loading activity %d: %w", id, err)
	}
	return activity, nil
}

func (s *activityServiceImpl) populate(ctx context.Context, a *models.Activity) (*dto.ActivityResponse, error) {
	ids := make([]int64, 0, 1+len(a.Participants)+len(a.Waitlist))
	ids = append(ids, a.CreatorID)
	ids = append(ids, a.Participants...)
	ids = append(ids, a.Waitlist...)

	users, err := s.userRepo.GetSummaries(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int64("activityID", a.ID).Msg("Failed to resolve activity members")
		return nil, err
	}

	resp := dto.ToActivityResponse(a, users)
	return &resp, nil
}
