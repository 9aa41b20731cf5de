package websocket

import (
	"encoding/json"
	"sync"

	"blog-backend/pkg/logger"
	"blog-backend/pkg/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 代表一个WebSocket连接
// 同一用户可以有多个连接（多个标签页）

type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewClient 创建连接对象
func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 64)}
}

// Manager 管理所有在线用户的WebSocket连接，并发安全
// 通知已持久化在数据库中，不在线的用户直接跳过推送

type Manager struct {
	clients map[uint]map[*Client]struct{}
	lock    sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager() *Manager {
	return &Manager{clients: make(map[uint]map[*Client]struct{})}
}

// AddClient 添加新连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	set, ok := m.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	metrics.WebSocketConnections.Inc()
}

// RemoveClient 移除连接并关闭发送通道
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	set, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(m.clients, client.UserID)
	}
	metrics.WebSocketConnections.Dec()
}

// SendToUser 推送原始消息给指定用户的全部连接，返回成功投递的连接数
func (m *Manager) SendToUser(userID uint, msg []byte) int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	delivered := 0
	for client := range m.clients[userID] {
		select {
		case client.Send <- msg:
			delivered++
		default:
			// 发送缓冲已满，丢弃本条推送
			logger.Warn("WebSocket发送缓冲已满，丢弃推送", zap.Uint("user_id", userID))
		}
	}
	return delivered
}

// Push 将事件序列化为 JSON 后推送
func (m *Manager) Push(userID uint, event string, payload interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": event,
		"data": payload,
	})
	if err != nil {
		logger.Error("序列化推送消息失败", zap.Error(err))
		return
	}
	m.SendToUser(userID, msg)
}

// IsOnline 判断用户是否在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients[userID]) > 0
}
