package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/andrenormanlang/mindsmesh/internal/service"
)

// RoomHandler 封装了与会话房间相关的 HTTP 处理逻辑
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoomRequest 定义创建房间请求的结构体
type CreateRoomRequest struct {
	EmployerID   uint   `json:"employer_id" binding:"required"`
	FreelancerID uint   `json:"freelancer_id" binding:"required"`
	Name         string `json:"name" binding:"required,max=191"`
}

// CreateRoom 处理创建新房间的请求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	newRoom, err := h.roomService.CreateRoom(c.Request.Context(), req.EmployerID, req.FreelancerID, req.Name)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: failed to create room")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("room_id", newRoom.ID).Info("Handler.CreateRoom: room created successfully")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Room created successfully",
		"room":    newRoom,
	})
}

// ListFreelancerRooms 返回指定自由职业者参与的全部房间，含雇主信息
func (h *RoomHandler) ListFreelancerRooms(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}

	freelancerID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid freelancer ID format"})
		return
	}

	rooms, err := h.roomService.RoomsForFreelancer(c.Request.Context(), freelancerID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"rooms": rooms})
}

// parseUintParam 解析 URL 路径中的无符号整数参数
func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(v), err
}
