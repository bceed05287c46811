package dto

import "github.com/peerconnect/api/internal/app/models"

// RegisterRequest represents a sign-up with a college email
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100" example:"Alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@nitc.ac.in"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
	College  string `json:"college" binding:"required" example:"NIT Calicut"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the fields to change; absent fields are kept.
// Interests may be a list of strings or a comma-separated string.
type UpdateProfileRequest struct {
	Name      *string     `json:"name" binding:"omitempty,notblank,max=100"`
	Email     *string     `json:"email" binding:"omitempty,email"`
	Avatar    *string     `json:"avatar" binding:"omitempty,url"`
	Interests interface{} `json:"interests" swaggertype:"array,string"`
	College   *string     `json:"college"`
	Password  *string     `json:"password" binding:"omitempty,min=6"`
}

// UserResponse represents a user's own profile
type UserResponse struct {
	ID            int64    `json:"id" example:"1"`
	Name          string   `json:"name" example:"Alice"`
	Email         string   `json:"email" example:"alice@nitc.ac.in"`
	Avatar        *string  `json:"avatar,omitempty"`
	Interests     []string `json:"interests"`
	College       string   `json:"college" example:"NIT Calicut"`
	EmailVerified bool     `json:"emailVerified" example:"true"`
}

// AuthResponse is the profile plus a bearer token
type AuthResponse struct {
	UserResponse
	Token     string `json:"token"`
	TokenType string `json:"tokenType" example:"Bearer"`
	ExpiresIn int    `json:"expiresIn" example:"2592000"`
}

// CollegeResponse is a supported college and its required email domain
type CollegeResponse struct {
	Name   string `json:"name" example:"NIT Calicut"`
	Domain string `json:"domain" example:"nitc.ac.in"`
}

// ToUserResponse converts a user model to its profile response
func ToUserResponse(u *models.User) UserResponse {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Avatar:        u.Avatar,
		Interests:     interests,
		College:       u.College,
		EmailVerified: u.EmailVerified,
	}
}

// NewAuthResponse builds the login / profile-update response
func NewAuthResponse(u *models.User, token string, expiresIn int) AuthResponse {
	return AuthResponse{
		UserResponse: ToUserResponse(u),
		Token:        token,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}
}
