package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/repository/mocks"
)

func newTestRoomService() (*RoomService, *mocks.RoomRepository, *mocks.UserRepository) {
	roomRepo := new(mocks.RoomRepository)
	userRepo := new(mocks.UserRepository)
	return NewRoomService(roomRepo, userRepo), roomRepo, userRepo
}

func TestCreateRoom_Success(t *testing.T) {
	svc, roomRepo, userRepo := newTestRoomService()
	ctx := context.Background()

	userRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1, Role: domain.RoleEmployer}, nil).Once()
	userRepo.On("FindByID", ctx, uint(2)).Return(&domain.User{ID: 2, Role: domain.RoleFreelancer}, nil).Once()
	roomRepo.On("Save", ctx, mock.AnythingOfType("*domain.Room")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Room).ID = 5
	}).Return(nil).Once()

	room, err := svc.CreateRoom(ctx, 1, 2, "Project Kickoff")

	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, uint(5), room.ID)
	assert.Equal(t, uint(1), room.EmployerID)
	assert.Equal(t, uint(2), room.FreelancerID)
	assert.Equal(t, "Project Kickoff", room.Name)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoom_FreelancerNotFound(t *testing.T) {
	svc, roomRepo, userRepo := newTestRoomService()
	ctx := context.Background()

	userRepo.On("FindByID", ctx, uint(1)).Return(&domain.User{ID: 1}, nil).Once()
	userRepo.On("FindByID", ctx, uint(99)).Return(nil, repository.ErrUserNotFound).Once()

	_, err := svc.CreateRoom(ctx, 1, 99, "ghost room")

	assert.ErrorIs(t, err, ErrUserNotFound)
	roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// 同一参与者对可以拥有多个命名房间，创建前不做去重
func TestCreateRoom_AllowsDuplicatePair(t *testing.T) {
	svc, roomRepo, userRepo := newTestRoomService()
	ctx := context.Background()

	userRepo.On("FindByID", ctx, mock.AnythingOfType("uint")).Return(&domain.User{ID: 1}, nil)
	roomRepo.On("Save", ctx, mock.AnythingOfType("*domain.Room")).Return(nil).Twice()

	_, err := svc.CreateRoom(ctx, 1, 2, "first")
	require.NoError(t, err)
	_, err = svc.CreateRoom(ctx, 1, 2, "second")
	require.NoError(t, err)

	roomRepo.AssertNotCalled(t, "FindByParticipants", mock.Anything, mock.Anything, mock.Anything)
	roomRepo.AssertExpectations(t)
}

func TestRoomsForFreelancer(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	ctx := context.Background()

	expected := []domain.Room{
		{ID: 1, EmployerID: 3, FreelancerID: 2, Name: "Logo design", Employer: &domain.User{ID: 3, Username: "acme"}},
		{ID: 2, EmployerID: 4, FreelancerID: 2, Name: "API work"},
	}
	roomRepo.On("FindByFreelancer", ctx, uint(2)).Return(expected, nil).Once()

	rooms, err := svc.RoomsForFreelancer(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, expected, rooms)
}

func TestRoomsForFreelancer_RepoError(t *testing.T) {
	svc, roomRepo, _ := newTestRoomService()
	ctx := context.Background()

	roomRepo.On("FindByFreelancer", ctx, uint(2)).Return(nil, errors.New("db down")).Once()

	_, err := svc.RoomsForFreelancer(ctx, 2)

	assert.ErrorIs(t, err, ErrInternalServer)
}
