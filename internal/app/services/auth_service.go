package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/auth"
	"github.com/peerconnect/api/internal/pkg/email"
	"github.com/peerconnect/api/internal/pkg/validation"
)

// CollegeDirectory maps a supported college to its email domain. *config.Config implements it.
type CollegeDirectory interface {
	CollegeDomain(college string) (string, bool)
}

// AuthService defines the interface for identity operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MessageResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.AuthResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo     repositories.IUserRepository
	jwtService   *auth.JWTService
	emailService email.EmailService
	colleges     CollegeDirectory
	// verifyBaseURL is the public API root the verification link points at
	verifyBaseURL string
	logger        zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	colleges CollegeDirectory,
	verifyBaseURL string,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:      userRepo,
		jwtService:    jwtService,
		emailService:  emailService,
		colleges:      colleges,
		verifyBaseURL: strings.TrimRight(verifyBaseURL, "/"),
		logger:        logger,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// checkCollegeEmail fails unless college is supported and emailAddr is on its domain
func (s *authServiceImpl) checkCollegeEmail(college, emailAddr string) error {
	domain, ok := s.colleges.CollegeDomain(college)
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrInvalidCollege, "Invalid college selection")
	}
	if !validation.EmailHasDomain(emailAddr, domain) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail,
			fmt.Sprintf("Email must be a %s address for %s", "@"+domain, college))
	}
	return nil
}

// Register creates an unverified account and mails a verification link.
// Registering again with an address that was never verified overwrites the
// pending account and sends a fresh link.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MessageResponse, error) {
	emailAddr := normalizeEmail(req.Email)
	college := strings.TrimSpace(req.College)
	if err := s.checkCollegeEmail(college, emailAddr); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil && user.EmailVerified:
		return nil, apperrors.NewBadRequestError("Email is already registered")
	case err == nil:
		user.Name = strings.TrimSpace(req.Name)
		user.Password = hash
		user.College = college
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error().Err(err).Str("email", emailAddr).Msg("Failed to refresh pending registration")
			return nil, err
		}
		s.logger.Info().Int64("userID", user.ID).Msg("Pending registration refreshed")
	case errors.Is(err, apperrors.ErrUserNotFound):
		user = &models.User{
			Name:      strings.TrimSpace(req.Name),
			Email:     emailAddr,
			Password:  hash,
			College:   college,
			Interests: []string{},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
				return nil, apperrors.NewBadRequestError("Email is already registered")
			}
			s.logger.Error().Err(err).Str("email", emailAddr).Msg("Failed to create user")
			return nil, err
		}
		s.logger.Info().Int64("userID", user.ID).Str("college", college).Msg("User registered")
	default:
		s.logger.Error().Err(err).Str("email", emailAddr).Msg("Failed to look up user")
		return nil, err
	}

	s.sendVerification(user)

	return &dto.MessageResponse{
		Message: "Registration successful. Please check your email to verify your account.",
	}, nil
}

func (s *authServiceImpl) sendVerification(user *models.User) {
	token, err := s.jwtService.GenerateVerificationToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to create verification token")
		return
	}

	link := s.verifyBaseURL + "/api/auth/verify/" + token
	if err := s.emailService.SendVerificationEmail(user.Email, user.Name, link); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Verification email not sent")
	}
}

// Login checks credentials and issues an access token. Unverified accounts are refused.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
		}
		s.logger.Error().Err(err).Msg("Failed to look up user for login")
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	}
	if !user.EmailVerified {
		return nil, apperrors.NewCustomError(apperrors.ErrEmailNotVerified, "Please verify your email before logging in")
	}

	return s.issue(user)
}

func (s *authServiceImpl) issue(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate access token")
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	resp := dto.NewAuthResponse(user, token, expiresIn)
	return &resp, nil
}

// VerifyEmail consumes a verification token and marks the account verified
func (s *authServiceImpl) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtService.ValidateVerificationToken(token)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Rejected verification token")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidEmailToken, "Invalid or expired verification link")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, err
	}
	if normalizeEmail(user.Email) != normalizeEmail(claims.Email) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidEmailToken, "Invalid or expired verification link")
	}

	if !user.EmailVerified {
		if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
			s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to mark email verified")
			return nil, err
		}
		user.EmailVerified = true
		s.logger.Info().Int64("userID", user.ID).Msg("Email verified")
	}
	return user, nil
}

// GetProfile returns the caller's profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies the provided fields and returns the profile with a
// fresh token, since the email inside the old one may have changed.
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("User not found")
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Avatar != nil {
		if a := strings.TrimSpace(*req.Avatar); a != "" {
			user.Avatar = &a
		} else {
			user.Avatar = nil
		}
	}
	if interests, ok := validation.ParseInterests(req.Interests); ok {
		user.Interests = interests
	}
	if req.College != nil {
		user.College = strings.TrimSpace(*req.College)
	}
	if req.College != nil || req.Email != nil {
		if err := s.checkCollegeEmail(user.College, user.Email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewBadRequestError("Email is already registered")
		}
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to update profile")
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return s.issue(user)
}
