package hub

import "sync"

// Presence 维护用户 ID 到当前唯一活跃连接的映射。
// 硬性不变式：任意时刻每个用户至多持有一个连接；
// 驱逐旧连接和登记新连接在同一临界区内完成。
type Presence struct {
	mu     sync.Mutex
	byUser map[uint]*Client
}

// NewPresence 创建一个空的 Presence 注册表
func NewPresence() *Presence {
	return &Presence{byUser: make(map[uint]*Client)}
}

// Register 登记用户的新连接，返回被替换的旧连接 (没有则为 nil)。
// 关闭旧连接由调用方负责；替换本身相对其他 Register 调用是原子的。
func (p *Presence) Register(userID uint, client *Client) (evicted *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	evicted = p.byUser[userID]
	p.byUser[userID] = client
	return evicted
}

// Remove 移除用户的连接，仅当当前登记的正是该连接时生效。
// 被驱逐的旧连接迟到的注销请求不会误删新连接。
func (p *Presence) Remove(userID uint, client *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.byUser[userID] != client {
		return false
	}
	delete(p.byUser, userID)
	return true
}

// Get 返回用户当前的活跃连接，没有则为 nil
func (p *Presence) Get(userID uint) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byUser[userID]
}

// Online 返回当前所有在线用户的 ID 列表
func (p *Presence) Online() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	users := make([]uint, 0, len(p.byUser))
	for userID := range p.byUser {
		users = append(users, userID)
	}
	return users
}

// Count 返回当前在线连接数
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byUser)
}
