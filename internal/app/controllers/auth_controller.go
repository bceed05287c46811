package controllers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/app/services"
	"github.com/peerconnect/api/internal/middleware"
)

const verifiedPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="3;url=%[1]s">
<title>Email verified</title>
</head>
<body>
<h1>Email verified</h1>
<p>Thanks %[2]s, your account is active. Redirecting to <a href="%[1]s">login</a>...</p>
</body>
</html>`

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	colleges    []dto.CollegeResponse
	frontendURL string
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, colleges []dto.CollegeResponse, frontendURL string, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		colleges:    colleges,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an unverified account and emails a verification link. The email domain must match the college.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse} "Verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid college, email domain, or already registered"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Login handles user login
// @Summary Login user
// @Description Authenticates a verified user and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not verified"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Verify handles the link from the verification email
// @Summary Verify email address
// @Description Marks the account verified and redirects the browser to the login page
// @Tags auth
// @Produce html
// @Param token path string true "Verification token"
// @Success 200 {string} string "HTML redirect page"
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired verification link"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/verify/{token} [get]
func (c *AuthController) Verify(ctx *gin.Context) {
	user, err := c.authService.VerifyEmail(ctx, ctx.Param("token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	target := c.frontendURL + "/login?verified=1"
	page := fmt.Sprintf(verifiedPage, html.EscapeString(target), html.EscapeString(user.Name))
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GetProfile returns the caller's profile
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /auth/me [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	profile, err := c.authService.GetProfile(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// UpdateProfile changes the caller's profile and returns a fresh token
// @Summary Update current user
// @Description Absent fields are left unchanged. Interests may be an array or a comma-separated string.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/me [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", userID).Msg("Profile updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListColleges returns the supported colleges
// @Summary List supported colleges
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CollegeResponse}
// @Router /colleges [get]
func (c *AuthController) ListColleges(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.colleges))
}
