package repository

import (
	"context"
	"time"
)

// PresenceStateRepository 定义了与在线状态相关的派生数据操作，通常由 Redis 实现。
// 这里存储的全部是可重建的缓存数据，绝不作为持久化真相。
type PresenceStateRepository interface {
	// SetLastSeen 记录用户最后在线时间。
	SetLastSeen(ctx context.Context, userID uint, at time.Time) error

	// GetLastSeen 获取用户最后在线时间。
	// 如果没有记录，返回 ErrNotFound。
	GetLastSeen(ctx context.Context, userID uint) (time.Time, error)

	// IncrUnread 原子地增加 userID 来自 peerID 的未读计数，返回新值。
	IncrUnread(ctx context.Context, userID, peerID uint) (int64, error)

	// ResetUnread 清零 userID 来自 peerID 的未读计数。
	ResetUnread(ctx context.Context, userID, peerID uint) error

	// GetUnread 获取 userID 来自 peerID 的未读计数。
	GetUnread(ctx context.Context, userID, peerID uint) (int64, error)
}
