package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// PresenceStateRepository 是 repository.PresenceStateRepository 的 Mock 实现
type PresenceStateRepository struct {
	mock.Mock
}

func (m *PresenceStateRepository) SetLastSeen(ctx context.Context, userID uint, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *PresenceStateRepository) GetLastSeen(ctx context.Context, userID uint) (time.Time, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *PresenceStateRepository) IncrUnread(ctx context.Context, userID, peerID uint) (int64, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PresenceStateRepository) ResetUnread(ctx context.Context, userID, peerID uint) error {
	args := m.Called(ctx, userID, peerID)
	return args.Error(0)
}

func (m *PresenceStateRepository) GetUnread(ctx context.Context, userID, peerID uint) (int64, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Get(0).(int64), args.Error(1)
}
