package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/hub"
	"github.com/andrenormanlang/mindsmesh/internal/repository"
)

// PresenceHandler 提供在线状态的 REST 探测接口。
// online 来自 Hub 的实时注册表；last_seen 来自 Redis 的派生缓存。
type PresenceHandler struct {
	hub   *hub.Hub
	state repository.PresenceStateRepository
}

// NewPresenceHandler 创建 PresenceHandler 实例
func NewPresenceHandler(h *hub.Hub, state repository.PresenceStateRepository) *PresenceHandler {
	if h == nil {
		panic("Hub cannot be nil for PresenceHandler")
	}
	return &PresenceHandler{hub: h, state: state}
}

// PresenceResponse 定义在线状态查询的响应结构体
type PresenceResponse struct {
	UserID   uint       `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Get 处理 GET /presence/:userId
func (h *PresenceHandler) Get(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}

	userID, err := parseUintParam(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	resp := PresenceResponse{
		UserID: userID,
		Online: h.hub.IsOnline(userID),
	}

	if h.state != nil {
		lastSeen, err := h.state.GetLastSeen(c.Request.Context(), userID)
		if err == nil {
			resp.LastSeen = &lastSeen
		} else if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("user_id", userID).Warn("Handler.Presence: last-seen lookup failed")
		}
	}

	SuccessResponse(c, http.StatusOK, resp)
}
