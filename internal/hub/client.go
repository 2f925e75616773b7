package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// 单个客户端发送队列的缓冲大小
	sendBufferSize = 256
)

// Client 代表一个已通过认证的 WebSocket 连接。
// 一个 Client 自始至终只绑定一个用户；同一用户的新连接会驱逐旧的 Client。
type Client struct {
	hub    *Hub
	conn   *websocket.Conn // 测试中可以为 nil
	userID uint

	send      chan []byte   // 出站消息队列，仅由 WritePump 消费
	done      chan struct{} // 关闭信号；send 通道从不 close，避免广播竞争 panic
	closeOnce sync.Once
}

// NewClient 创建一个新的 Client 实例
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Run 启动客户端的读写 goroutine
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// UserID 返回此连接绑定的用户 ID
func (c *Client) UserID() uint { return c.userID }

// Done 返回关闭信号通道；连接被关闭或驱逐后该通道可读
func (c *Client) Done() <-chan struct{} { return c.done }

// Close 关闭连接并通知两个 pump 退出。可安全地重复调用。
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// queue 将消息放入此客户端的发送队列 (非阻塞)。
// 客户端已关闭或队列已满时返回 false，消息被丢弃。
func (c *Client) queue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		logrus.WithField("user_id", c.userID).Warn("Client send queue full, dropping message")
		return false
	}
}

// ReadPump 将消息从 WebSocket 连接泵送到 Hub 的处理通道。
// 它在自己的 goroutine 中运行，连接断开时请求 Hub 注销此客户端。
func (c *Client) ReadPump() {
	defer func() {
		unregisterMsg := HubMessage{Type: hubMsgUnregister, Client: c}
		select {
		case c.hub.messageChan <- unregisterMsg:
		case <-c.hub.done:
		case <-time.After(1 * time.Second):
			logrus.WithField("user_id", c.userID).Warn("Timeout sending unregister message to Hub channel")
		}
		c.Close()
		logrus.WithField("user_id", c.userID).Debug("readPump exited")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithField("user_id", c.userID)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		frameMsg := HubMessage{
			Type:    hubMsgFrame,
			Client:  c,
			RawData: message,
		}
		// 非阻塞发送到 Hub，如果 Hub 处理不过来则丢弃
		select {
		case c.hub.messageChan <- frameMsg:
		default:
			logrus.WithField("user_id", c.userID).Warn("Hub message channel full, dropping client frame")
		}
	}
}

// WritePump 将消息从发送队列泵送到 WebSocket 连接，并定期发送 Ping。
// 它在自己的 goroutine 中运行。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		logrus.WithField("user_id", c.userID).Debug("writePump exited")
	}()

	for {
		select {
		case <-c.done:
			// 连接被关闭或驱逐，尝试发送 WebSocket 关闭帧
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("Failed to write message to websocket")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("Failed to send ping message")
				return
			}
		}
	}
}
