package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/middleware"
	"github.com/peerconnect/api/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

// --- mocks ---

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

type MockActivityService struct{ mock.Mock }

func (m *MockActivityService) ListByCollege(ctx context.Context, college string) ([]dto.ActivityResponse, error) {
	args := m.Called(ctx, college)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ActivityResponse), args.Error(1)
}

func (m *MockActivityService) Create(ctx context.Context, creatorID int64, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	args := m.Called(ctx, creatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActivityResponse), args.Error(1)
}

func (m *MockActivityService) GetByID(ctx context.Context, id int64) (*dto.ActivityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActivityResponse), args.Error(1)
}

func (m *MockActivityService) Join(ctx context.Context, activityID, userID int64) (*dto.JoinActivityResponse, error) {
	args := m.Called(ctx, activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JoinActivityResponse), args.Error(1)
}

func (m *MockActivityService) Leave(ctx context.Context, activityID, userID int64) (*dto.LeaveActivityResponse, error) {
	args := m.Called(ctx, activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LeaveActivityResponse), args.Error(1)
}

func (m *MockActivityService) Update(ctx context.Context, activityID, userID int64, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	args := m.Called(ctx, activityID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActivityResponse), args.Error(1)
}

func (m *MockActivityService) Delete(ctx context.Context, activityID, userID int64) error {
	return m.Called(ctx, activityID, userID).Error(0)
}

type MockChatService struct{ mock.Mock }

func (m *MockChatService) CheckActivity(ctx context.Context, activityID int64) error {
	return m.Called(ctx, activityID).Error(0)
}

func (m *MockChatService) GetHistory(ctx context.Context, activityID int64) ([]dto.ChatMessageResponse, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ChatMessageResponse), args.Error(1)
}

func (m *MockChatService) SendMessage(ctx context.Context, activityID, senderID int64, content string) (*dto.ChatMessageResponse, error) {
	args := m.Called(ctx, activityID, senderID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChatMessageResponse), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) NotifyMentions(ctx context.Context, activity *models.Activity, sender *models.User, content string) (int, error) {
	args := m.Called(ctx, activity, sender, content)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, userID int64) ([]dto.NotificationResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.NotificationResponse), args.Error(1)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID int64) (*dto.UnreadCountResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UnreadCountResponse), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, notificationID, userID int64) error {
	return m.Called(ctx, notificationID, userID).Error(0)
}

func (m *MockNotificationService) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// --- helpers ---

// asUser stands in for JWTAuth
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorCode {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

// --- auth ---

func TestAuthController(t *testing.T) {
	svc := new(MockAuthService)
	colleges := []dto.CollegeResponse{{Name: "NIT Calicut", Domain: "nitc.ac.in"}}
	ctrl := NewAuthController(svc, colleges, "http://localhost:5173/", zerolog.Nop())

	router := gin.New()
	router.POST("/api/auth/register", ctrl.Register)
	router.GET("/api/auth/verify/:token", ctrl.Verify)
	router.GET("/api/colleges", ctrl.ListColleges)
	router.GET("/api/auth/me", ctrl.GetProfile)
	router.GET("/api/me", asUser(4), ctrl.GetProfile)

	t.Run("register created", func(t *testing.T) {
		svc.On("Register", mock.Anything, mock.MatchedBy(func(r *dto.RegisterRequest) bool {
			return r.Email == "alice@nitc.ac.in" && r.College == "NIT Calicut"
		})).Return(&dto.MessageResponse{Message: "Registration successful"}, nil).Once()

		w := do(router, http.MethodPost, "/api/auth/register",
			`{"name":"Alice","email":"alice@nitc.ac.in","password":"secret123","college":"NIT Calicut"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var msg dto.MessageResponse
		decodeData(t, w, &msg)
		assert.Equal(t, "Registration successful", msg.Message)
	})

	t.Run("register bad body", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/auth/register", `{"name":"Alice","email":"not-an-email","password":"secret123","college":"NIT Calicut"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeValidationFailed, errorCode(t, w))
	})

	t.Run("register wrong domain", func(t *testing.T) {
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewCustomError(apperrors.ErrInvalidEmail, "Email must end with @nitc.ac.in")).Once()

		w := do(router, http.MethodPost, "/api/auth/register",
			`{"name":"Bob","email":"bob@gmail.com","password":"secret123","college":"NIT Calicut"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidEmail, errorCode(t, w))
	})

	t.Run("verify redirects to login", func(t *testing.T) {
		svc.On("VerifyEmail", mock.Anything, "good").Return(&models.User{ID: 1, Name: "Alice"}, nil).Once()

		w := do(router, http.MethodGet, "/api/auth/verify/good", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "http://localhost:5173/login?verified=1")
	})

	t.Run("verify bad token", func(t *testing.T) {
		svc.On("VerifyEmail", mock.Anything, "bad").
			Return(nil, apperrors.NewCustomError(apperrors.ErrInvalidEmailToken, "Invalid or expired verification link")).Once()

		w := do(router, http.MethodGet, "/api/auth/verify/bad", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("colleges", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/colleges", "")
		var got []dto.CollegeResponse
		decodeData(t, w, &got)
		assert.Equal(t, colleges, got)
	})

	t.Run("profile needs a user", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/auth/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("profile", func(t *testing.T) {
		svc.On("GetProfile", mock.Anything, int64(4)).Return(&dto.UserResponse{ID: 4, Name: "Dana"}, nil).Once()

		w := do(router, http.MethodGet, "/api/me", "")
		var got dto.UserResponse
		decodeData(t, w, &got)
		assert.Equal(t, "Dana", got.Name)
	})

	svc.AssertExpectations(t)
}

// --- activities ---

func TestActivityController(t *testing.T) {
	activities := new(MockActivityService)
	chat := new(MockChatService)
	ctrl := NewActivityController(activities, chat, zerolog.Nop())

	router := gin.New()
	group := router.Group("/api/activities", asUser(7))
	group.GET("", ctrl.ListActivities)
	group.POST("", ctrl.CreateActivity)
	group.POST("/:id/join", ctrl.JoinActivity)
	group.POST("/:id/leave", ctrl.LeaveActivity)
	group.PUT("/:id", ctrl.UpdateActivity)
	group.DELETE("/:id", ctrl.DeleteActivity)
	group.GET("/:id/messages", ctrl.GetMessages)

	t.Run("list requires college", func(t *testing.T) {
		activities.On("ListByCollege", mock.Anything, "").Return(nil, apperrors.NewValidationError("College is required")).Once()

		w := do(router, http.MethodGet, "/api/activities", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		activities.On("ListByCollege", mock.Anything, "NIT Calicut").
			Return([]dto.ActivityResponse{{ID: 1, Title: "Run"}}, nil).Once()

		w := do(router, http.MethodGet, "/api/activities?college=NIT%20Calicut", "")
		var got []dto.ActivityResponse
		decodeData(t, w, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "Run", got[0].Title)
	})

	t.Run("create", func(t *testing.T) {
		activities.On("Create", mock.Anything, int64(7), mock.Anything).
			Return(&dto.ActivityResponse{ID: 3, Title: "Chess"}, nil).Once()

		w := do(router, http.MethodPost, "/api/activities",
			`{"title":"Chess","category":"Study","date":"2026-11-02","time":"18:00","location":"Library","capacity":4}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("create rejects zero capacity", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/activities",
			`{"title":"Chess","category":"Study","date":"2026-11-02","time":"18:00","location":"Library","capacity":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("join waitlist", func(t *testing.T) {
		activities.On("Join", mock.Anything, int64(9), int64(7)).
			Return(&dto.JoinActivityResponse{Message: "Activity is full, added to waitlist", Status: "waitlist"}, nil).Once()

		w := do(router, http.MethodPost, "/api/activities/9/join", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var got dto.JoinActivityResponse
		decodeData(t, w, &got)
		assert.Equal(t, "waitlist", got.Status)
	})

	t.Run("join twice conflicts", func(t *testing.T) {
		activities.On("Join", mock.Anything, int64(9), int64(7)).
			Return(nil, apperrors.NewCustomError(apperrors.ErrConflict, "Already joined")).Once()

		w := do(router, http.MethodPost, "/api/activities/9/join", "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrorCodeConflict, errorCode(t, w))
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(router, http.MethodPost, "/api/activities/abc/leave", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("leave promotes", func(t *testing.T) {
		promoted := int64(12)
		activities.On("Leave", mock.Anything, int64(9), int64(7)).
			Return(&dto.LeaveActivityResponse{Message: "Left successfully", PromotedUserID: &promoted}, nil).Once()

		w := do(router, http.MethodPost, "/api/activities/9/leave", "")
		var got dto.LeaveActivityResponse
		decodeData(t, w, &got)
		require.NotNil(t, got.PromotedUserID)
		assert.Equal(t, int64(12), *got.PromotedUserID)
	})

	t.Run("delete by non-creator", func(t *testing.T) {
		activities.On("Delete", mock.Anything, int64(9), int64(7)).
			Return(apperrors.NewForbiddenError("Only the creator can modify this activity")).Once()

		w := do(router, http.MethodDelete, "/api/activities/9", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("messages of unknown activity", func(t *testing.T) {
		chat.On("GetHistory", mock.Anything, int64(404)).Return(nil, apperrors.ErrActivityNotFound).Once()

		w := do(router, http.MethodGet, "/api/activities/404/messages", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	activities.AssertExpectations(t)
	chat.AssertExpectations(t)
}

// --- notifications ---

func TestNotificationController(t *testing.T) {
	svc := new(MockNotificationService)
	ctrl := NewNotificationController(svc)

	router := gin.New()
	group := router.Group("/api/notifications", asUser(5))
	group.GET("/unread-count", ctrl.UnreadCount)
	group.PUT("/read-all", ctrl.MarkAllRead)
	group.PUT("/:id/read", ctrl.MarkRead)
	group.DELETE("/:id", ctrl.DeleteNotification)
	group.DELETE("", ctrl.DeleteAll)

	t.Run("unread count", func(t *testing.T) {
		svc.On("UnreadCount", mock.Anything, int64(5)).Return(&dto.UnreadCountResponse{Count: 3}, nil).Once()

		w := do(router, http.MethodGet, "/api/notifications/unread-count", "")
		var got dto.UnreadCountResponse
		decodeData(t, w, &got)
		assert.Equal(t, int64(3), got.Count)
	})

	t.Run("mark someone else's", func(t *testing.T) {
		svc.On("MarkRead", mock.Anything, int64(2), int64(5)).Return(apperrors.NewForbiddenError("Not authorized")).Once()

		w := do(router, http.MethodPut, "/api/notifications/2/read", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete missing", func(t *testing.T) {
		svc.On("Delete", mock.Anything, int64(8), int64(5)).Return(apperrors.ErrNotificationNotFound).Once()

		w := do(router, http.MethodDelete, "/api/notifications/8", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bulk", func(t *testing.T) {
		svc.On("MarkAllRead", mock.Anything, int64(5)).Return(int64(4), nil).Once()
		svc.On("DeleteAll", mock.Anything, int64(5)).Return(int64(6), nil).Once()

		var got bulkResult
		decodeData(t, do(router, http.MethodPut, "/api/notifications/read-all", ""), &got)
		assert.Equal(t, int64(4), got.Count)

		decodeData(t, do(router, http.MethodDelete, "/api/notifications", ""), &got)
		assert.Equal(t, int64(6), got.Count)
	})

	svc.AssertExpectations(t)
}

func TestHealthController(t *testing.T) {
	router := gin.New()
	router.GET("/ok", NewHealthController(stubPinger{}, zerolog.Nop()).Health)
	router.GET("/down", NewHealthController(stubPinger{err: assert.AnError}, zerolog.Nop()).Health)

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/down", "").Code)
}
