package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/repository/mocks"
)

type chatServiceMocks struct {
	messageRepo *mocks.MessageRepository
	userRepo    *mocks.UserRepository
	roomRepo    *mocks.RoomRepository
}

func newTestChatService() (*ChatService, chatServiceMocks) {
	m := chatServiceMocks{
		messageRepo: new(mocks.MessageRepository),
		userRepo:    new(mocks.UserRepository),
		roomRepo:    new(mocks.RoomRepository),
	}
	return NewChatService(m.messageRepo, m.userRepo, m.roomRepo), m
}

func TestSendMessage_Success(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()
	roomID := uint(9)

	m.messageRepo.On("Exists", ctx, id).Return(false, nil).Once()
	m.userRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	m.userRepo.On("FindByID", ctx, uint(2)).Return(&domain.User{ID: 2}, nil).Once()
	m.roomRepo.On("FindByParticipants", ctx, uint(1), uint(2)).Return(&domain.Room{ID: roomID}, nil).Once()
	m.messageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).Return(nil).Once()

	before := time.Now()
	msg, duplicate, err := svc.SendMessage(ctx, id, 1, 2, "hello")

	require.NoError(t, err)
	assert.False(t, duplicate)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, uint(1), msg.SenderID)
	assert.Equal(t, uint(2), msg.ReceiverID)
	assert.Equal(t, "hello", msg.Body)
	require.NotNil(t, msg.RoomID)
	assert.Equal(t, roomID, *msg.RoomID)
	// 时间戳来自服务端时钟
	assert.False(t, msg.CreatedAt.Before(before))
	assert.False(t, msg.CreatedAt.After(time.Now()))
	m.messageRepo.AssertExpectations(t)
	m.roomRepo.AssertExpectations(t)
}

func TestSendMessage_DuplicateID(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()

	m.messageRepo.On("Exists", ctx, id).Return(true, nil).Once()

	msg, duplicate, err := svc.SendMessage(ctx, id, 1, 2, "retry")

	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Nil(t, msg)
	// 重复消息不进入持久化路径
	m.messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSendMessage_LostInsertRace(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()

	m.messageRepo.On("Exists", ctx, id).Return(false, nil).Once()
	m.userRepo.On("FindByID", ctx, mock.AnythingOfType("uint")).Return(&domain.User{ID: 1}, nil).Twice()
	m.roomRepo.On("FindByParticipants", ctx, uint(1), uint(2)).Return(nil, repository.ErrRoomNotFound).Once()
	m.messageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).Return(repository.ErrDuplicateEntry).Once()

	msg, duplicate, err := svc.SendMessage(ctx, id, 1, 2, "raced")

	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Nil(t, msg)
}

func TestSendMessage_UnknownReceiver(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()

	m.messageRepo.On("Exists", ctx, id).Return(false, nil).Once()
	m.userRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	m.userRepo.On("FindByID", ctx, uint(99)).Return(nil, repository.ErrUserNotFound).Once()

	_, _, err := svc.SendMessage(ctx, id, 1, 99, "to nobody")

	assert.ErrorIs(t, err, ErrUserNotFound)
	m.messageRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSendMessage_EmptyText(t *testing.T) {
	svc, _ := newTestChatService()

	_, _, err := svc.SendMessage(context.Background(), uuid.NewString(), 1, 2, "")

	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSendMessage_StoreUnavailable(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()

	m.messageRepo.On("Exists", ctx, id).Return(false, errors.New("connection refused")).Once()

	_, _, err := svc.SendMessage(ctx, id, 1, 2, "hello")

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSendMessage_NoRoomAssociation(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()
	id := uuid.NewString()

	m.messageRepo.On("Exists", ctx, id).Return(false, nil).Once()
	m.userRepo.On("FindByID", ctx, mock.AnythingOfType("uint")).Return(&domain.User{ID: 1}, nil).Twice()
	m.roomRepo.On("FindByParticipants", ctx, uint(1), uint(2)).Return(nil, repository.ErrRoomNotFound).Once()
	m.messageRepo.On("Save", ctx, mock.AnythingOfType("*domain.Message")).Return(nil).Once()

	msg, duplicate, err := svc.SendMessage(ctx, id, 1, 2, "no room yet")

	require.NoError(t, err)
	assert.False(t, duplicate)
	require.NotNil(t, msg)
	assert.Nil(t, msg.RoomID, "message without an existing room persists with nil room id")
}

func TestHistory(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()

	expected := []domain.Message{
		{ID: uuid.NewString(), SenderID: 1, ReceiverID: 2, Body: "first"},
		{ID: uuid.NewString(), SenderID: 2, ReceiverID: 1, Body: "second"},
	}
	m.messageRepo.On("HistoryBetween", ctx, uint(1), uint(2)).Return(expected, nil).Once()

	messages, err := svc.History(ctx, 1, 2)

	require.NoError(t, err)
	assert.Equal(t, expected, messages)
}

func TestHistory_RepoError(t *testing.T) {
	svc, m := newTestChatService()
	ctx := context.Background()

	m.messageRepo.On("HistoryBetween", ctx, uint(1), uint(2)).Return(nil, errors.New("timeout")).Once()

	_, err := svc.History(ctx, 1, 2)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
