package domain

import "time"

// Message 表示两个用户之间的一条聊天消息。
// ID 由客户端在发送前生成 (UUID)，是去重的唯一依据；
// 消息一旦持久化即不可变。
type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID   uint      `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint      `gorm:"index;not null" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"text"`
	RoomID     *uint     `gorm:"index" json:"room_id,omitempty"` // 可选的房间关联
	CreatedAt  time.Time `gorm:"index;not null" json:"created_at"` // 持久化时由服务端时钟赋值
}
