package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// MessageRepository 是 repository.MessageRepository 的 Mock 实现
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepository) Save(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepository) HistoryBetween(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB)
	var messages []domain.Message
	if args.Get(0) != nil {
		messages = args.Get(0).([]domain.Message)
	}
	return messages, args.Error(1)
}
