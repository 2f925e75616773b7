package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// RoomRepository 是 repository.RoomRepository 的 Mock 实现
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	args := m.Called(ctx, id)
	var room *domain.Room
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) FindByParticipants(ctx context.Context, userA, userB uint) (*domain.Room, error) {
	args := m.Called(ctx, userA, userB)
	var room *domain.Room
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) FindByFreelancer(ctx context.Context, freelancerID uint) ([]domain.Room, error) {
	args := m.Called(ctx, freelancerID)
	var rooms []domain.Room
	if args.Get(0) != nil {
		rooms = args.Get(0).([]domain.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) TouchActivity(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
