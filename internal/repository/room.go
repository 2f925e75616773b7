package repository

import (
	"context"
	"time"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// RoomRepository 定义了会话房间数据的存储和检索操作。
type RoomRepository interface {
	// FindByID 根据房间 ID 查找房间。
	// 如果房间不存在，返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// FindByParticipants 查找两个用户之间最早创建的房间，方向无关。
	// 同一对参与者可能存在多个房间，取创建时间最早的一个作为消息关联目标。
	// 如果不存在任何房间，返回 ErrRoomNotFound。
	FindByParticipants(ctx context.Context, userA, userB uint) (*domain.Room, error)

	// FindByFreelancer 返回指定自由职业者参与的全部房间，
	// 按创建时间升序，并预加载雇主信息用于展示。
	FindByFreelancer(ctx context.Context, freelancerID uint) ([]domain.Room, error)

	// Save 保存房间信息。不检查同一参与者对是否已有房间。
	Save(ctx context.Context, room *domain.Room) error

	// TouchActivity 更新房间的最后活跃时间。
	TouchActivity(ctx context.Context, id uint, at time.Time) error
}
