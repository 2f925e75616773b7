package hub

import (
	"encoding/json"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
)

// 客户端与服务端之间的事件类型
const (
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
	EventMarkAsRead     = "markAsRead"
	EventMessagesRead   = "messagesRead"
	EventError          = "error"
)

// clientEvent 是客户端入站帧的 JSON 封装
type clientEvent struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"` // sendMessage: 客户端生成的消息 UUID
	ReceiverID uint   `json:"receiver_id,omitempty"`
	SenderID   uint   `json:"sender_id,omitempty"` // markAsRead: 被确认消息的发送者
	Text       string `json:"text,omitempty"`
}

// receiveMessageEvent 是推送给双方的消息事件
type receiveMessageEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

// peerEvent 是 typing/stopTyping/messagesRead 等瞬态事件，不持久化
type peerEvent struct {
	Type     string `json:"type"`
	SenderID uint   `json:"sender_id"`
}

// errorEvent 推送给发送方，对应一次失败的发送
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func marshalReceiveMessage(msg *domain.Message) ([]byte, error) {
	return json.Marshal(receiveMessageEvent{Type: EventReceiveMessage, Message: msg})
}

func marshalPeerEvent(eventType string, senderID uint) ([]byte, error) {
	return json.Marshal(peerEvent{Type: eventType, SenderID: senderID})
}

func marshalErrorEvent(message string) []byte {
	payload, _ := json.Marshal(errorEvent{Type: EventError, Message: message})
	return payload
}
