package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/hub"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// PresenceFlushHandler 周期性地把 Hub 的在线用户集合写入 last-seen 缓存。
// 这样即使进程异常退出丢掉断连回调，last-seen 的误差也被限制在一个
// 调度周期以内。
type PresenceFlushHandler struct {
	hub   *hub.Hub
	state repository.PresenceStateRepository
}

// NewPresenceFlushHandler 创建 Handler 实例
func NewPresenceFlushHandler(h *hub.Hub, state repository.PresenceStateRepository) *PresenceFlushHandler {
	return &PresenceFlushHandler{hub: h, state: state}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *PresenceFlushHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if h.hub == nil || h.state == nil {
		return nil
	}

	now := time.Now()
	online := h.hub.OnlineUsers()
	for _, userID := range online {
		if err := h.state.SetLastSeen(ctx, userID, now); err != nil {
			// 单个用户失败不中断整轮刷新
			logrus.WithError(err).WithField("user_id", userID).Warn("PresenceFlushHandler: failed to flush last-seen")
		}
	}

	logrus.WithField("online_count", len(online)).Debug("Presence flush task processed")
	return nil
}
