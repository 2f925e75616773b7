package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/domain"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// ChatService 负责消息的去重、持久化和历史查询。
// 发送路径的顺序是硬性约束：先按 ID 查重，再解析参与者身份，
// 最后持久化；广播由调用方 (Hub) 在持久化成功之后进行。
type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
}

// NewChatService 创建 ChatService 实例。
func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, roomRepo repository.RoomRepository) *ChatService {
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for ChatService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for ChatService")
	}
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for ChatService")
	}
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		roomRepo:    roomRepo,
	}
}

// SendMessage 按客户端生成的消息 ID 幂等地持久化一条消息。
// 返回值 duplicate 为 true 表示该 ID 已持久化过，调用是无副作用的重试吸收，
// 此时不返回消息对象，调用方不得再次广播。
func (s *ChatService) SendMessage(ctx context.Context, id string, senderID, receiverID uint, text string) (msg *domain.Message, duplicate bool, err error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"message_id":  id,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	})

	if id == "" || text == "" {
		return nil, false, ErrInvalidMessage
	}

	// 1. 查重：同一 ID 的重复发送静默吸收
	exists, err := s.messageRepo.Exists(ctx, id)
	if err != nil {
		logCtx.WithError(err).Error("SendMessage: existence check failed")
		return nil, false, ErrStoreUnavailable
	}
	if exists {
		logCtx.Debug("SendMessage: duplicate message id, absorbing retry")
		return nil, true, nil
	}

	// 2. 解析发送者和接收者身份
	if _, err := s.resolveParticipant(ctx, senderID); err != nil {
		logCtx.WithError(err).Warn("SendMessage: unknown sender")
		return nil, false, err
	}
	if _, err := s.resolveParticipant(ctx, receiverID); err != nil {
		logCtx.WithError(err).Warn("SendMessage: unknown receiver")
		return nil, false, err
	}

	// 3. 关联已有的会话房间（没有也不阻塞发送）
	var roomID *uint
	room, err := s.roomRepo.FindByParticipants(ctx, senderID, receiverID)
	if err == nil && room != nil {
		roomID = &room.ID
	} else if err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		logCtx.WithError(err).Warn("SendMessage: room lookup failed, persisting without room association")
	}

	// 4. 持久化。时间戳用服务端时钟，避免客户端时钟偏差打乱排序。
	message := &domain.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       text,
		RoomID:     roomID,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Save(ctx, message); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// 并发的同 ID 发送赢得了插入竞争，按幂等成功处理
			logCtx.Debug("SendMessage: lost insert race to concurrent duplicate, absorbing")
			return nil, true, nil
		}
		logCtx.WithError(err).Error("SendMessage: persistence failed")
		return nil, false, ErrStoreUnavailable
	}

	logCtx.WithField("room_id", roomID).Info("Message persisted")
	return message, false, nil
}

// History 返回两个用户之间双向交换的全部消息，按持久化时间升序。
func (s *ChatService) History(ctx context.Context, userA, userB uint) ([]domain.Message, error) {
	messages, err := s.messageRepo.HistoryBetween(ctx, userA, userB)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_a": userA,
			"user_b": userB,
		}).Error("History: repository error")
		return nil, ErrStoreUnavailable
	}
	return messages, nil
}

// resolveParticipant 确认参与者存在，未知用户映射为 ErrUserNotFound。
func (s *ChatService) resolveParticipant(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrStoreUnavailable
	}
	return user, nil
}
