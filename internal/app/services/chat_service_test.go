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

	"github.com/peerconnect/api/internal/app/models"
	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/websocket"
)

type chatFixture struct {
	chats         *MockChatRepository
	activities    *MockActivityRepository
	users         *MockUserRepository
	notifications *MockNotificationService
	broadcaster   *MockBroadcaster
	svc           *chatServiceImpl
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:         new(MockChatRepository),
		activities:    new(MockActivityRepository),
		users:         new(MockUserRepository),
		notifications: new(MockNotificationService),
		broadcaster:   new(MockBroadcaster),
	}
	svc := NewChatService(f.chats, f.activities, f.users, f.notifications, f.broadcaster, time.Second, zerolog.Nop())
	f.svc = svc.(*chatServiceImpl)
	f.svc.async = func(fn func()) { fn() }
	return f
}

func TestChatService_SendMessage(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	activity := &models.Activity{ID: 5, Title: "Football", Participants: []int64{1, 2}}
	sender := &models.User{ID: 2, Name: "Bob"}

	f.activities.On("GetByID", mock.Anything, int64(5)).Return(activity, nil)
	f.users.On("GetByID", ctx, int64(2)).Return(sender, nil)
	f.chats.On("Create", ctx, mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			m := args.Get(1).(*models.ChatMessage)
			m.ID = 99
			m.CreatedAt = time.Now()
		}).Return(nil)
	f.broadcaster.On("BroadcastToActivity", int64(5), websocket.EventReceiveMessage, mock.AnythingOfType("dto.ChatMessageResponse")).Return(nil)
	f.notifications.On("NotifyMentions", mock.Anything, activity, sender, "  @Alice check this out ").Return(1, nil)

	resp, err := f.svc.SendMessage(ctx, 5, 2, "  @Alice check this out ")
	require.NoError(t, err)

	assert.Equal(t, int64(99), resp.ID)
	assert.Equal(t, "  @Alice check this out ", resp.Content)
	stored := f.chats.Calls[0].Arguments.Get(1).(*models.ChatMessage)
	assert.Equal(t, "  @Alice check this out ", stored.Content)
	require.NotNil(t, resp.Sender)
	assert.Equal(t, "Bob", resp.Sender.Name)

	f.broadcaster.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestChatService_SendMessageWithoutMentionSkipsScan(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	f.activities.On("GetByID", ctx, int64(5)).Return(&models.Activity{ID: 5}, nil)
	f.users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, Name: "Bob"}, nil)
	f.chats.On("Create", ctx, mock.Anything).Return(nil)
	f.broadcaster.On("BroadcastToActivity", int64(5), websocket.EventReceiveMessage, mock.Anything).Return(nil)

	_, err := f.svc.SendMessage(ctx, 5, 2, "see you at six")
	require.NoError(t, err)

	f.notifications.AssertNotCalled(t, "NotifyMentions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_SendMessageValidation(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, 5, 2, "   \n\t")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.SendMessage(ctx, 5, 2, strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	f.chats.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChatService_SendMessageUnknownActivity(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	f.activities.On("GetByID", ctx, int64(5)).Return(nil, apperrors.ErrActivityNotFound)

	_, err := f.svc.SendMessage(ctx, 5, 2, "hello")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	f.broadcaster.AssertNotCalled(t, "BroadcastToActivity", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_MentionFailureDoesNotFailSend(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	activity := &models.Activity{ID: 5}
	f.activities.On("GetByID", mock.Anything, int64(5)).Return(activity, nil)
	f.users.On("GetByID", ctx, int64(2)).Return(&models.User{ID: 2, Name: "Bob"}, nil)
	f.chats.On("Create", ctx, mock.Anything).Return(nil)
	f.broadcaster.On("BroadcastToActivity", int64(5), websocket.EventReceiveMessage, mock.Anything).Return(errors.New("hub stopped"))
	f.notifications.On("NotifyMentions", mock.Anything, activity, mock.Anything, "@Alice hi").Return(0, errors.New("db down"))

	resp, err := f.svc.SendMessage(ctx, 5, 2, "@Alice hi")
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestChatService_GetHistory(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	f.activities.On("GetByID", ctx, int64(5)).Return(&models.Activity{ID: 5}, nil)
	f.chats.On("ListByActivity", ctx, int64(5)).Return([]*models.ChatMessage{
		{ID: 1, ActivityID: 5, SenderID: 2, Content: "first"},
		{ID: 2, ActivityID: 5, SenderID: 1, Content: "second"},
	}, nil)

	history, err := f.svc.GetHistory(ctx, 5)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)

	f.activities.On("GetByID", ctx, int64(6)).Return(nil, apperrors.ErrActivityNotFound)
	_, err = f.svc.GetHistory(ctx, 6)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	f.activities.On("GetByID", ctx, int64(7)).Return(&models.Activity{ID: 7}, nil)
	f.chats.On("ListByActivity", ctx, int64(7)).Return([]*models.ChatMessage{}, nil)
	empty, err := f.svc.GetHistory(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []dto.ChatMessageResponse{}, empty)
}

func TestChatService_CheckActivity(t *testing.T) {
	f := newChatFixture()
	ctx := context.Background()

	f.activities.On("GetByID", ctx, int64(5)).Return(&models.Activity{ID: 5}, nil)
	f.activities.On("GetByID", ctx, int64(6)).Return(nil, apperrors.ErrActivityNotFound)

	assert.NoError(t, f.svc.CheckActivity(ctx, 5))
	assert.ErrorIs(t, f.svc.CheckActivity(ctx, 6), apperrors.ErrResourceNotFound)
	f.chats.AssertNotCalled(t, "ListByActivity", mock.Anything, mock.Anything)
}
