// Package tasks 定义后台任务的类型常量和 payload 构造函数。
package tasks

import (
	"encoding/json"
	"time"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// 定义任务类型常量
const (
	TypeRoomActivity  = "chat:room_activity" // 消息投递后的房间活跃度/未读计数更新
	TypePresenceFlush = "presence:flush"     // 周期性地将在线用户写入 last-seen 缓存
)

// RoomActivityPayload 定义了房间活跃度任务的数据结构
type RoomActivityPayload struct {
	MessageID  string    `json:"message_id"`
	RoomID     *uint     `json:"room_id,omitempty"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	SentAt     time.Time `json:"sent_at"`
}

// NewRoomActivityTask 为一条已投递的消息构造任务 payload
func NewRoomActivityTask(msg domain.Message) ([]byte, error) {
	payload := RoomActivityPayload{
		MessageID:  msg.ID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		SentAt:     msg.CreatedAt,
	}
	return json.Marshal(payload)
}

// NewPresenceFlushTask 构造周期性 presence 刷新任务的 payload (无数据)
func NewPresenceFlushTask() ([]byte, error) {
	return json.Marshal(struct{}{})
}
