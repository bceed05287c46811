package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/auth"
)

type staticColleges map[string]string

func (c staticColleges) CollegeDomain(college string) (string, bool) {
	d, ok := c[college]
	return d, ok
}

type authFixture struct {
	users *MockUserRepository
	email *MockEmailService
	jwt   *auth.JWTService
	svc   AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users: new(MockUserRepository),
		email: new(MockEmailService),
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenExp: time.Hour,
			VerifyTokenExp: 24 * time.Hour,
			TokenIssuer:    "peerconnect-test",
		}),
	}
	f.svc = NewAuthService(f.users, f.jwt, f.email, staticColleges{"NIT Calicut": "nitc.ac.in"}, "http://api.test/", zerolog.Nop())
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestAuthService_RegisterNewUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "alice@nitc.ac.in").Return(nil, apperrors.ErrUserNotFound)
	f.users.On("Create", ctx, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 7 }).
		Return(nil)

	var link string
	f.email.On("SendVerificationEmail", "alice@nitc.ac.in", "Alice", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { link = args.String(2) }).
		Return(nil)

	resp, err := f.svc.Register(ctx, &dto.RegisterRequest{
		Name: "Alice", Email: " Alice@NITC.ac.in ", Password: "secret1", College: "NIT Calicut",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "verify")

	require.True(t, strings.HasPrefix(link, "http://api.test/api/auth/verify/"), link)
	claims, err := f.jwt.ValidateVerificationToken(strings.TrimPrefix(link, "http://api.test/api/auth/verify/"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	created := f.users.Calls[1].Arguments.Get(1).(*models.User)
	assert.False(t, created.EmailVerified)
	assert.True(t, auth.CheckPassword(created.Password, "secret1"))
}

func TestAuthService_RegisterDomainRules(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@nitc.ac.in", Password: "secret1", College: "Nowhere"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCollege)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@gmail.com", Password: "secret1", College: "NIT Calicut"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)
	assert.Contains(t, apperrors.MessageOf(err, ""), "@nitc.ac.in")

	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterExisting(t *testing.T) {
	t.Run("verified account is rejected", func(t *testing.T) {
		f := newAuthFixture()
		ctx := context.Background()
		f.users.On("GetByEmail", ctx, "a@nitc.ac.in").Return(&models.User{ID: 1, EmailVerified: true}, nil)

		_, err := f.svc.Register(ctx, &dto.RegisterRequest{Name: "A", Email: "a@nitc.ac.in", Password: "secret1", College: "NIT Calicut"})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("unverified account is overwritten", func(t *testing.T) {
		f := newAuthFixture()
		ctx := context.Background()
		pending := &models.User{ID: 1, Name: "Old", Email: "a@nitc.ac.in", Password: "old", College: "NIT Calicut"}
		f.users.On("GetByEmail", ctx, "a@nitc.ac.in").Return(pending, nil)
		f.users.On("Update", ctx, pending).Return(nil)
		f.email.On("SendVerificationEmail", "a@nitc.ac.in", "New", mock.Anything).Return(errors.New("smtp down"))

		_, err := f.svc.Register(ctx, &dto.RegisterRequest{Name: "New", Email: "a@nitc.ac.in", Password: "secret1", College: "NIT Calicut"})
		require.NoError(t, err)
		assert.Equal(t, "New", pending.Name)
		assert.True(t, auth.CheckPassword(pending.Password, "secret1"))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	verified := &models.User{ID: 1, Name: "Alice", Email: "alice@nitc.ac.in", Password: hashed(t, "secret1"), EmailVerified: true}
	pending := &models.User{ID: 2, Email: "bob@nitc.ac.in", Password: hashed(t, "secret1")}

	f.users.On("GetByEmail", ctx, "alice@nitc.ac.in").Return(verified, nil)
	f.users.On("GetByEmail", ctx, "bob@nitc.ac.in").Return(pending, nil)
	f.users.On("GetByEmail", ctx, "nobody@nitc.ac.in").Return(nil, apperrors.ErrUserNotFound)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@nitc.ac.in", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, "Bearer", resp.TokenType)
	claims, err := f.jwt.ValidateAndExtractClaims(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@nitc.ac.in", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@nitc.ac.in", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "bob@nitc.ac.in", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestAuthService_VerifyEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := &models.User{ID: 3, Email: "c@nitc.ac.in"}
	f.users.On("GetByID", ctx, int64(3)).Return(user, nil)
	f.users.On("MarkVerified", ctx, int64(3)).Return(nil).Once()

	token, err := f.jwt.GenerateVerificationToken(3, "c@nitc.ac.in")
	require.NoError(t, err)

	got, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	access, _, err := f.jwt.GenerateAccessToken(3, "c@nitc.ac.in")
	require.NoError(t, err)
	_, err = f.svc.VerifyEmail(ctx, access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmailToken)

	_, err = f.svc.VerifyEmail(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmailToken)

	f.users.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := &models.User{ID: 1, Name: "Alice", Email: "alice@nitc.ac.in", College: "NIT Calicut", EmailVerified: true}
	f.users.On("GetByID", ctx, int64(1)).Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil)

	name := "Alice K"
	resp, err := f.svc.UpdateProfile(ctx, 1, &dto.UpdateProfileRequest{
		Name:      &name,
		Interests: "football, chess ,, music",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice K", resp.Name)
	assert.Equal(t, []string{"football", "chess", "music"}, resp.Interests)
	assert.NotEmpty(t, resp.Token)

	otherCollege := "Elsewhere"
	_, err = f.svc.UpdateProfile(ctx, 1, &dto.UpdateProfileRequest{College: &otherCollege})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCollege)
}
