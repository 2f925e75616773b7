// Package hub 实现聊天核心的投递中枢：连接生命周期、每用户在线槽位、
// 消息事件的路由和广播。所有持久化都委托给 service 层，并严格保证
// “先持久化、后广播”的顺序。
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
	"github.com/andrenormanlang/mindsmesh/internal/service"
	"github.com/andrenormanlang/mindsmesh/internal/tasks"
)

// Hub 内部通道消息类型
const (
	hubMsgRegister   = "register"
	hubMsgUnregister = "unregister"
	hubMsgFrame      = "frame"
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "frame"
	Client  *Client // 事件来源的客户端
	RawData []byte  // 仅用于 frame (原始 WebSocket 消息)
}

// NewRegisterMessage 构造一条把客户端接入 Hub 的内部消息
func NewRegisterMessage(c *Client) HubMessage {
	return HubMessage{Type: hubMsgRegister, Client: c}
}

// ChatSender 抽象了 Hub 依赖的消息发送路径 (去重 + 持久化)。
// 由 service.ChatService 实现；测试中可替换。
type ChatSender interface {
	SendMessage(ctx context.Context, id string, senderID, receiverID uint, text string) (*domain.Message, bool, error)
}

// Hub 维护所有活跃连接并路由聊天事件。
// 显式构造、按引用传递，不存在包级单例。
type Hub struct {
	messageChan chan HubMessage
	presence    *Presence

	chat       ChatSender
	state      repository.PresenceStateRepository // 可以为 nil (测试)
	taskClient *asynq.Client                      // 可以为 nil (测试)

	// messageChan 从不 close：关闭期间仍有存活连接在发送，
	// 关停信号走 done 通道，晚到的消息被静默丢弃
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub 创建并返回一个新的 Hub 实例。
// state 和 taskClient 是可选的副作用依赖，为 nil 时对应副作用被跳过。
func NewHub(chat ChatSender, state repository.PresenceStateRepository, taskClient *asynq.Client) *Hub {
	if chat == nil {
		panic("ChatSender cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		presence:    NewPresence(),
		chat:        chat,
		state:       state,
		taskClient:  taskClient,
		done:        make(chan struct{}),
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行，Stop 被调用后退出。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case <-h.done:
			log.Info("Hub is shutting down...")
			return
		case msg := <-h.messageChan:
			switch msg.Type {
			case hubMsgRegister:
				h.registerClient(msg.Client)
			case hubMsgUnregister:
				h.unregisterClient(msg.Client)
			case hubMsgFrame:
				// 帧处理涉及存储 I/O，放到独立 goroutine，避免阻塞主循环。
				// 每条消息的顺序由持久化层的插入顺序决定，不依赖这里的调度。
				go h.handleFrame(msg.Client, msg.RawData)
			default:
				log.Warnf("Hub: received unknown message type: %s", msg.Type)
			}
		}
	}
}

// Stop 通知 Run 退出。可安全地重复调用。
// messageChan 保持打开：HTTP 服务器关闭不会断开已升级的 WebSocket 连接，
// 存活连接在关停窗口内仍可能发送，不能让它们撞上已关闭的通道。
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 返回 true 如果消息成功入队；Hub 已停止或队列已满时返回 false。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// registerClient 登记一个新连接。同一用户的旧连接被驱逐并关闭，
// 实现“异地登录挤掉当前会话”的语义。
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	logCtx := logrus.WithField("user_id", client.UserID())

	evicted := h.presence.Register(client.UserID(), client)
	if evicted != nil {
		evicted.Close()
		logCtx.Info("Previous connection evicted by new login")
	}
	logCtx.Info("Client registered to Hub")

	h.touchLastSeen(client.UserID())
}

// unregisterClient 注销一个连接。
// 只有当该连接仍然是用户的当前连接时才影响在线状态；
// 被驱逐连接迟到的注销请求是无害的重复关闭。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithField("user_id", client.UserID())

	client.Close()
	if h.presence.Remove(client.UserID(), client) {
		logCtx.Info("Client unregistered from Hub")
		h.touchLastSeen(client.UserID())
	} else {
		logCtx.Debug("Stale unregister for already-replaced connection")
	}
}

// handleFrame 解析并分发一个客户端入站帧
func (h *Hub) handleFrame(client *Client, raw []byte) {
	logCtx := logrus.WithField("user_id", client.UserID())

	var ev clientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		logCtx.WithError(err).Warn("Hub: malformed client frame")
		client.queue(marshalErrorEvent("malformed event"))
		return
	}

	switch ev.Type {
	case EventSendMessage:
		h.handleSend(client, ev)
	case EventTyping, EventStopTyping:
		h.relayTransient(client, ev.Type, ev.ReceiverID)
	case EventMarkAsRead:
		h.MarkRead(client.UserID(), ev.SenderID)
	default:
		logCtx.Warnf("Hub: unknown event type '%s'", ev.Type)
		client.queue(marshalErrorEvent("unknown event type"))
	}
}

// handleSend 处理 sendMessage 事件。失败通过 error 事件反馈给发送方，
// 连接保持打开；重复的消息 ID 被静默吸收。
func (h *Hub) handleSend(client *Client, ev clientEvent) {
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":     client.UserID(),
		"message_id":  ev.ID,
		"receiver_id": ev.ReceiverID,
	})

	if _, err := uuid.Parse(ev.ID); err != nil {
		logCtx.Warn("Hub: sendMessage with invalid message id")
		client.queue(marshalErrorEvent("message id must be a UUID"))
		return
	}

	// 即使发送方在处理过程中断开，持久化也要运行到完成或明确失败
	_, _, err := h.SendChatMessage(context.Background(), ev.ID, client.UserID(), ev.ReceiverID, ev.Text)
	if err != nil {
		logCtx.WithError(err).Warn("Hub: sendMessage failed")
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			client.queue(marshalErrorEvent("sender or receiver not found"))
		case errors.Is(err, service.ErrInvalidMessage):
			client.queue(marshalErrorEvent("message id and text are required"))
		default:
			// 存储暂时不可用：客户端用同一 id 重试是安全的
			client.queue(marshalErrorEvent("message could not be saved, retry with the same id"))
		}
	}
}

// SendChatMessage 是消息发送的统一路径：去重、持久化、再向双方的
// 活跃连接广播。WebSocket 帧和 REST 回退接口都走这里。
// duplicate 为 true 表示重复发送被吸收，没有任何广播发生。
func (h *Hub) SendChatMessage(ctx context.Context, id string, senderID, receiverID uint, text string) (*domain.Message, bool, error) {
	msg, duplicate, err := h.chat.SendMessage(ctx, id, senderID, receiverID, text)
	if err != nil {
		return nil, false, err
	}
	if duplicate {
		return nil, true, nil
	}

	// 持久化成功后才广播；发送方自己也收到，用于多标签页收敛和发送确认
	payload, marshalErr := marshalReceiveMessage(msg)
	if marshalErr != nil {
		logrus.WithError(marshalErr).WithField("message_id", msg.ID).Error("Hub: failed to marshal receiveMessage event")
		return msg, false, nil
	}
	h.Deliver(msg.SenderID, payload)
	h.Deliver(msg.ReceiverID, payload)

	h.enqueueRoomActivity(msg)
	return msg, false, nil
}

// relayTransient 转发 typing/stopTyping 等瞬态事件，不持久化，
// 接收方不在线时静默丢弃。
func (h *Hub) relayTransient(client *Client, eventType string, receiverID uint) {
	payload, err := marshalPeerEvent(eventType, client.UserID())
	if err != nil {
		return
	}
	h.Deliver(receiverID, payload)
}

// MarkRead 处理已读确认：清零未读计数并通知对方。
// 纯尽力而为的派生状态，不持久化。
func (h *Hub) MarkRead(readerID, senderID uint) {
	if h.state != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := h.state.ResetUnread(ctx, readerID, senderID); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"reader_id": readerID,
					"sender_id": senderID,
				}).Warn("Hub: failed to reset unread counter")
			}
		}()
	}
	if payload, err := marshalPeerEvent(EventMessagesRead, readerID); err == nil {
		h.Deliver(senderID, payload)
	}
}

// Deliver 将事件投递到指定用户的活跃连接。
// 用户不在线是正常情况，不是错误：离线用户靠下一次历史拉取收敛。
func (h *Hub) Deliver(userID uint, payload []byte) {
	client := h.presence.Get(userID)
	if client == nil {
		return
	}
	client.queue(payload)
}

// IsOnline 报告用户当前是否有活跃连接
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.Get(userID) != nil
}

// OnlineUsers 返回当前在线用户 ID 列表，供后台任务刷新 last-seen 缓存
func (h *Hub) OnlineUsers() []uint {
	return h.presence.Online()
}

// touchLastSeen 异步刷新用户的 last-seen 缓存
func (h *Hub) touchLastSeen(userID uint) {
	if h.state == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.state.SetLastSeen(ctx, userID, time.Now()); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Hub: failed to update last-seen cache")
		}
	}()
}

// enqueueRoomActivity 为已投递的消息排入后台活动任务
// (房间活跃时间、未读计数)。失败只记日志，不影响发送路径。
func (h *Hub) enqueueRoomActivity(msg *domain.Message) {
	if h.taskClient == nil {
		return
	}
	payload, err := tasks.NewRoomActivityTask(*msg)
	if err != nil {
		logrus.WithError(err).WithField("message_id", msg.ID).Error("Hub: failed to build room activity task")
		return
	}
	task := asynq.NewTask(tasks.TypeRoomActivity, payload)
	if _, err := h.taskClient.Enqueue(task, asynq.Queue("default")); err != nil {
		logrus.WithError(err).WithField("message_id", msg.ID).Warn("Hub: failed to enqueue room activity task")
	}
}
