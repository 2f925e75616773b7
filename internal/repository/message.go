package repository

import (
	"context"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// MessageRepository 定义了聊天消息的持久化操作。
type MessageRepository interface {
	// Exists 检查指定 ID 的消息是否已持久化。
	// 必须与 Save 强一致：主键唯一约束是并发重复发送的最终防线。
	Exists(ctx context.Context, id string) (bool, error)

	// Save 持久化一条消息。如果 CreatedAt 为零值，由存储层赋服务端时间。
	// 如果消息 ID 已存在，返回 ErrDuplicateEntry。
	Save(ctx context.Context, message *domain.Message) error

	// HistoryBetween 返回两个用户之间双向交换的全部消息，
	// 按持久化时间 (CreatedAt) 升序。
	HistoryBetween(ctx context.Context, userA, userB uint) ([]domain.Message, error)
}
