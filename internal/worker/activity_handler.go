package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/tasks"
)

// RoomActivityHandler 处理消息投递后的房间活跃度任务：
// 更新房间的最后活跃时间，并增加接收方的未读计数。
type RoomActivityHandler struct {
	roomRepo repository.RoomRepository
	state    repository.PresenceStateRepository
}

// NewRoomActivityHandler 创建 Handler 实例
func NewRoomActivityHandler(roomRepo repository.RoomRepository, state repository.PresenceStateRepository) *RoomActivityHandler {
	return &RoomActivityHandler{roomRepo: roomRepo, state: state}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *RoomActivityHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RoomActivityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("RoomActivityHandler: failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"task_type":   t.Type(),
		"message_id":  payload.MessageID,
		"receiver_id": payload.ReceiverID,
	})

	if payload.RoomID != nil && h.roomRepo != nil {
		if err := h.roomRepo.TouchActivity(ctx, *payload.RoomID, payload.SentAt); err != nil {
			logCtx.WithError(err).Error("RoomActivityHandler: failed to touch room activity")
			return fmt.Errorf("failed to touch room %d: %w", *payload.RoomID, err)
		}
	}

	if h.state != nil {
		if _, err := h.state.IncrUnread(ctx, payload.ReceiverID, payload.SenderID); err != nil {
			logCtx.WithError(err).Error("RoomActivityHandler: failed to increment unread counter")
			return fmt.Errorf("failed to incr unread for user %d: %w", payload.ReceiverID, err)
		}
	}

	logCtx.Debug("Room activity task processed")
	return nil
}
