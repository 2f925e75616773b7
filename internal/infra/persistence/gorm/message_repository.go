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

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Exists 实现按消息 ID 检查消息是否已持久化
func (r *GormMessageRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count messages by id '%s': %w", id, err)
	}
	return count > 0, nil
}

// Save 实现持久化一条消息。
// CreatedAt 为零值时赋服务端时间；主键冲突映射为 ErrDuplicateEntry，
// 这是并发重复发送穿过 Exists 检查后的最终防线。
func (r *GormMessageRepository) Save(ctx context.Context, message *domain.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		if isDuplicateEntryError(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save message '%s': %w", message.ID, err)
	}
	return nil
}

// HistoryBetween 实现双向会话历史查询，按持久化时间升序
func (r *GormMessageRepository) HistoryBetween(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	var messages []domain.Message
	// id 作次级排序键：同一毫秒内持久化的消息也要有稳定顺序
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: history between %d and %d: %w", userA, userB, err)
	}
	return messages, nil
}
