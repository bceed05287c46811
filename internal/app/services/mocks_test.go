package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/peerconnect/api/internal/app/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if u, ok := args.Get(0).([]*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	if u, ok := args.Get(0).(map[int64]models.UserSummary); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*models.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActivityRepository) ListByCollege(ctx context.Context, college string) ([]*models.Activity, error) {
	args := m.Called(ctx, college)
	if a, ok := args.Get(0).([]*models.Activity); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActivityRepository) UpdateDetails(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) UpdateMembership(ctx context.Context, activity *models.Activity, expectedVersion int64) (bool, error) {
	args := m.Called(ctx, activity, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockChatRepository) ListByActivity(ctx context.Context, activityID int64) ([]*models.ChatMessage, error) {
	args := m.Called(ctx, activityID)
	if list, ok := args.Get(0).([]*models.ChatMessage); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*models.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID int64) ([]*models.Notification, error) {
	args := m.Called(ctx, recipientID)
	if list, ok := args.Get(0).([]*models.Notification); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteAll(ctx context.Context, recipientID int64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) BroadcastToActivity(activityID int64, event string, data interface{}) error {
	args := m.Called(activityID, event, data)
	return args.Error(0)
}

func (m *MockBroadcaster) PushToUser(userID int64, event string, data interface{}) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationEmail(toEmail, toName, verificationURL string) error {
	args := m.Called(toEmail, toName, verificationURL)
	return args.Error(0)
}

func (m *MockEmailService) SendMentionEmail(toEmail, senderName string) error {
	args := m.Called(toEmail, senderName)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
	NotificationService
}

func (m *MockNotificationService) NotifyMentions(ctx context.Context, activity *models.Activity, sender *models.User, content string) (int, error) {
	args := m.Called(ctx, activity, sender, content)
	return args.Int(0), args.Error(1)
}
