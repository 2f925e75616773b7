// Package redisstate 提供 PresenceStateRepository 接口的 Redis 实现。
package redisstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// lastSeenTTL 限制 last-seen 记录的存活时间，防止无用 key 堆积。
const lastSeenTTL = 30 * 24 * time.Hour

// RedisPresenceRepository 是 PresenceStateRepository 接口的 Redis 实现。
// 所有数据都是派生缓存，丢失后可由 Hub 和 worker 重建。
type RedisPresenceRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPresenceRepository 创建 RedisPresenceRepository 实例
func NewRedisPresenceRepository(client *redis.Client, keyPrefix string) *RedisPresenceRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisPresenceRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "mm:"
	}
	return &RedisPresenceRepository{client: client, keyPrefix: keyPrefix}
}

// --- Key Generation Helpers ---

func (r *RedisPresenceRepository) lastSeenKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:last_seen", r.keyPrefix, userID)
}

func (r *RedisPresenceRepository) unreadKey(userID, peerID uint) string {
	return fmt.Sprintf("%suser:%d:unread:%d", r.keyPrefix, userID, peerID)
}

// SetLastSeen 记录用户最后在线时间 (Unix 纳秒)
func (r *RedisPresenceRepository) SetLastSeen(ctx context.Context, userID uint, at time.Time) error {
	key := r.lastSeenKey(userID)
	if err := r.client.Set(ctx, key, strconv.FormatInt(at.UnixNano(), 10), lastSeenTTL).Err(); err != nil {
		return fmt.Errorf("redis: set last seen for user %d: %w", userID, err)
	}
	return nil
}

// GetLastSeen 获取用户最后在线时间
func (r *RedisPresenceRepository) GetLastSeen(ctx context.Context, userID uint) (time.Time, error) {
	key := r.lastSeenKey(userID)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, repository.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("redis: get last seen for user %d: %w", userID, err)
	}
	nanos, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return time.Time{}, fmt.Errorf("redis: parse last seen '%s' for user %d: %w", raw, userID, parseErr)
	}
	return time.Unix(0, nanos), nil
}

// IncrUnread 原子地增加未读计数
func (r *RedisPresenceRepository) IncrUnread(ctx context.Context, userID, peerID uint) (int64, error) {
	key := r.unreadKey(userID, peerID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: incr unread %d<-%d: %w", userID, peerID, err)
	}
	return count, nil
}

// ResetUnread 清零未读计数
func (r *RedisPresenceRepository) ResetUnread(ctx context.Context, userID, peerID uint) error {
	key := r.unreadKey(userID, peerID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: reset unread %d<-%d: %w", userID, peerID, err)
	}
	return nil
}

// GetUnread 获取未读计数，key 不存在视为 0
func (r *RedisPresenceRepository) GetUnread(ctx context.Context, userID, peerID uint) (int64, error) {
	key := r.unreadKey(userID, peerID)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: get unread %d<-%d: %w", userID, peerID, err)
	}
	count, parseErr := strconv.ParseInt(raw, 10, 64)
	if parseErr != nil {
		return 0, fmt.Errorf("redis: parse unread '%s' for %d<-%d: %w", raw, userID, peerID, parseErr)
	}
	return count, nil
}
