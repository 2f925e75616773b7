package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// RoomService 负责会话房间的创建和查询。
// 创建前不检查同一参与者对是否已有房间：允许多个命名会话并存。
type RoomService struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
}

// NewRoomService 创建 RoomService 实例。
func NewRoomService(roomRepo repository.RoomRepository, userRepo repository.UserRepository) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo, userRepo: userRepo}
}

// CreateRoom 为一对雇主/自由职业者创建一个新房间。
// 任一参与者不存在时返回 ErrUserNotFound。
func (s *RoomService) CreateRoom(ctx context.Context, employerID, freelancerID uint, name string) (*domain.Room, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"employer_id":   employerID,
		"freelancer_id": freelancerID,
		"room_name":     name,
	})

	if _, err := s.requireUser(ctx, employerID); err != nil {
		logCtx.WithError(err).Warn("CreateRoom: employer not found")
		return nil, err
	}
	if _, err := s.requireUser(ctx, freelancerID); err != nil {
		logCtx.WithError(err).Warn("CreateRoom: freelancer not found")
		return nil, err
	}

	room := &domain.Room{
		EmployerID:   employerID,
		FreelancerID: freelancerID,
		Name:         name,
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("CreateRoom: failed to save room")
		return nil, ErrInternalServer
	}

	logCtx.WithField("room_id", room.ID).Info("Room created successfully")
	return room, nil
}

// RoomsForFreelancer 返回指定自由职业者参与的全部房间，雇主信息已预加载。
func (s *RoomService) RoomsForFreelancer(ctx context.Context, freelancerID uint) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindByFreelancer(ctx, freelancerID)
	if err != nil {
		logrus.WithError(err).WithField("freelancer_id", freelancerID).Error("RoomsForFreelancer: repository error")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

func (s *RoomService) requireUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternalServer
	}
	return user, nil
}
