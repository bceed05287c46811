package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/peerconnect/api/internal/app/models/dto"
	"github.com/peerconnect/api/internal/pkg/apperrors"
)

type MockChatService struct {
	mock.Mock
}

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

func frame(t *testing.T, event string, data interface{}) Frame {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Frame{Event: event, Data: raw}
}

func errorMessage(t *testing.T, env Envelope) string {
	t.Helper()
	require.Equal(t, EventError, env.Event)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	return data["message"].(string)
}

func TestJoinRoomSubscribesAndSendsHistory(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	history := []dto.ChatMessageResponse{
		{ID: 1, ActivityID: 9, Content: "first", CreatedAt: time.Now()},
		{ID: 2, ActivityID: 9, Content: "second", CreatedAt: time.Now()},
	}
	chat.On("CheckActivity", mock.Anything, int64(9)).Return(nil)
	chat.On("GetHistory", mock.Anything, int64(9)).Return(history, nil)

	handler.HandleFrame(client, frame(t, EventJoinRoom, "9"))

	env := receive(t, client)
	assert.Equal(t, EventChatHistory, env.Event)
	assert.Len(t, env.Data, 2)
	assert.Equal(t, 1, hub.GetClientsCount(ActivityRoom(9)))
	chat.AssertExpectations(t)
}

func TestJoinUnknownRoomEmitsError(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	chat.On("CheckActivity", mock.Anything, int64(404)).
		Return(apperrors.NewResourceNotFoundError("Activity not found"))

	handler.HandleFrame(client, frame(t, EventJoinRoom, map[string]interface{}{"_id": "404"}))

	assert.Equal(t, "Activity not found", errorMessage(t, receive(t, client)))
	assert.Equal(t, 0, hub.GetClientsCount(ActivityRoom(404)))
	chat.AssertNotCalled(t, "GetHistory", mock.Anything, mock.Anything)
}

func TestJoinRoomKeepsMessageSentDuringHistoryLoad(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	chat.On("CheckActivity", mock.Anything, int64(9)).Return(nil)
	chat.On("GetHistory", mock.Anything, int64(9)).
		Run(func(mock.Arguments) {
			// Another member posts while the history query is running
			require.NoError(t, hub.BroadcastToActivity(9, EventReceiveMessage, dto.ChatMessageResponse{ID: 2, ActivityID: 9}))
		}).
		Return([]dto.ChatMessageResponse{{ID: 1, ActivityID: 9}}, nil)

	handler.HandleFrame(client, frame(t, EventJoinRoom, 9))

	live := receive(t, client)
	assert.Equal(t, EventReceiveMessage, live.Event)
	assert.Equal(t, float64(2), live.Data.(map[string]interface{})["id"])

	history := receive(t, client)
	assert.Equal(t, EventChatHistory, history.Event)
	assert.Len(t, history.Data, 1)
}

func TestJoinUserRoomOnlyForSelf(t *testing.T) {
	hub, _ := startHub(t)
	handler := NewMessageHandler(hub, new(MockChatService), zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	handler.HandleFrame(client, frame(t, EventJoinUserRoom, 6))
	assert.Equal(t, "Cannot join another user's room", errorMessage(t, receive(t, client)))

	handler.HandleFrame(client, frame(t, EventJoinUserRoom, "5"))
	assert.Equal(t, 1, hub.GetClientsCount(UserRoom(5)))
}

func TestSendMessageUsesAuthenticatedSender(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	chat.On("SendMessage", mock.Anything, int64(9), int64(5), "hello").
		Return(&dto.ChatMessageResponse{ID: 3}, nil)

	handler.HandleFrame(client, frame(t, EventSendMessage, map[string]interface{}{
		"activityId": 9,
		"senderId":   "77",
		"content":    "hello",
	}))

	chat.AssertExpectations(t)
}

func TestSendMessageFailureEmitsError(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	chat.On("SendMessage", mock.Anything, int64(9), int64(5), "  ").
		Return(nil, apperrors.NewValidationError("Message content is required"))

	handler.HandleFrame(client, frame(t, EventSendMessage, map[string]interface{}{"activityId": "9", "content": "  "}))

	assert.Equal(t, "Message content is required", errorMessage(t, receive(t, client)))
}

func TestSendMessageIsThrottled(t *testing.T) {
	hub, _ := startHub(t)
	chat := new(MockChatService)
	handler := NewMessageHandler(hub, chat, zerolog.Nop())

	client := NewClient(hub, nil, 5, handler, rate.NewLimiter(rate.Every(time.Hour), 1), zerolog.Nop())
	require.NoError(t, hub.Register(client))

	chat.On("SendMessage", mock.Anything, int64(9), int64(5), "one").Return(&dto.ChatMessageResponse{ID: 1}, nil).Once()

	handler.HandleFrame(client, frame(t, EventSendMessage, map[string]interface{}{"activityId": 9, "content": "one"}))
	handler.HandleFrame(client, frame(t, EventSendMessage, map[string]interface{}{"activityId": 9, "content": "two"}))

	assert.Equal(t, "You are sending messages too quickly", errorMessage(t, receive(t, client)))
	chat.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestUnknownEvent(t *testing.T) {
	hub, _ := startHub(t)
	handler := NewMessageHandler(hub, new(MockChatService), zerolog.Nop())
	client := newTestClient(t, hub, 5, handler)

	handler.HandleFrame(client, Frame{Event: "dance"})
	assert.Equal(t, "Unknown event", errorMessage(t, receive(t, client)))
}
