package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// FindByID 实现根据房间 ID 查找房间
func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

// FindByParticipants 实现查找两个用户之间最早创建的房间（方向无关）
func (r *GormRoomRepository) FindByParticipants(ctx context.Context, userA, userB uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Where("(employer_id = ? AND freelancer_id = ?) OR (employer_id = ? AND freelancer_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by participants (%d, %d): %w", userA, userB, err)
	}
	return &room, nil
}

// FindByFreelancer 实现按自由职业者查询房间列表，预加载雇主信息
func (r *GormRoomRepository) FindByFreelancer(ctx context.Context, freelancerID uint) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Preload("Employer").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find rooms by freelancer %d: %w", freelancerID, err)
	}
	return rooms, nil
}

// Save 实现保存房间信息（创建或更新）
func (r *GormRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room (id: %d, name: %s): %w", room.ID, room.Name, err)
	}
	return nil
}

// TouchActivity 实现更新房间的最后活跃时间
func (r *GormRoomRepository) TouchActivity(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Update("last_activity", at).Error
	if err != nil {
		return fmt.Errorf("gorm: touch room %d activity: %w", id, err)
	}
	return nil
}
