package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/hub"
	"github.com/andrenormanlang/mindsmesh/internal/service"
)

// ChatHandler 封装了聊天相关的 REST 接口：非实时的发送回退和历史查询。
// 发送接口与 WebSocket 的 sendMessage 共用 Hub 的统一路径，
// 保持同样的去重、持久化、广播语义。
type ChatHandler struct {
	hub         *hub.Hub
	chatService *service.ChatService
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(h *hub.Hub, chatService *service.ChatService) *ChatHandler {
	if h == nil {
		panic("Hub cannot be nil for ChatHandler")
	}
	if chatService == nil {
		panic("ChatService cannot be nil for ChatHandler")
	}
	return &ChatHandler{hub: h, chatService: chatService}
}

// SendMessageRequest 定义发送消息请求的结构体。
// ID 由客户端生成 (UUID)，用作去重键；REST 调用方未提供时由服务端补发，
// 此时该次调用失去重试幂等性。
type SendMessageRequest struct {
	ID   string `json:"id" binding:"omitempty,uuid"`
	Text string `json:"text" binding:"required"`
}

// SendMessage 处理 POST /chat/:receiverId/send
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID, ok := authedUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("sender_id", senderID)

	receiverID, err := parseUintParam(c, "receiverId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver ID format"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.SendMessage: invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// 与 WebSocket 路径一致：调用方断开不取消进行中的持久化，
	// 客户端可以用同一 id 安全重试
	msg, duplicate, err := h.hub.SendChatMessage(context.Background(), req.ID, senderID, receiverID, req.Text)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.SendMessage: send failed")
		HandleServiceError(c, err)
		return
	}
	if duplicate {
		// 重复发送对调用方表现为普通成功
		SuccessResponse(c, http.StatusOK, gin.H{"message": "Message delivered", "id": req.ID})
		return
	}

	logCtx.WithField("message_id", msg.ID).Info("Handler.SendMessage: message sent")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Message delivered", "id": msg.ID})
}

// History 处理 GET /chat/:userId1/:userId2/messages
func (h *ChatHandler) History(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}

	userA, errA := parseUintParam(c, "userId1")
	userB, errB := parseUintParam(c, "userId2")
	if errA != nil || errB != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), userA, userB)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"messages": messages})
}

// MarkReadRequest 定义已读确认请求的结构体
type MarkReadRequest struct {
	SenderID uint `json:"sender_id" binding:"required"`
}

// MarkRead 处理 POST /chat/read，等价于 WebSocket 的 markAsRead 事件
func (h *ChatHandler) MarkRead(c *gin.Context) {
	readerID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: sender_id is required"})
		return
	}

	h.hub.MarkRead(readerID, req.SenderID)
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Marked as read"})
}
