package websocket

import (
	"net/http"
	"strings"
	"time"

	"blog-backend/config"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域，来源控制交给 CORS 配置
	},
}

// Handler 通知推送的 WebSocket 入口
type Handler struct {
	jwt     *jwt.JWTService
	manager *Manager
	cfg     config.WebSocketConfig
}

func NewHandler(jwtSvc *jwt.JWTService, manager *Manager, cfg config.WebSocketConfig) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * cfg.PingInterval
	}
	return &Handler{jwt: jwtSvc, manager: manager, cfg: cfg}
}

// Serve Gin路由处理函数，token 通过 query 或 Sec-WebSocket-Protocol 传入
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "Authentication credentials were not provided.")
		return
	}

	claims, err := h.jwt.ValidateToken(token, jwt.TokenTypeAccess)
	if err != nil {
		response.Unauthorized(c, "Given token not valid for any token type.")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(claims.UserID, conn)
	h.manager.AddClient(client)
	logger.Info("通知连接建立", zap.Uint("user_id", claims.UserID))

	go h.writeLoop(client)
	h.readLoop(client)

	h.manager.RemoveClient(client)
	_ = conn.Close()
	logger.Info("通知连接关闭", zap.Uint("user_id", claims.UserID))
}

// writeLoop 写协程：转发推送消息并定时发送ping心跳
func (h *Handler) writeLoop(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				_ = client.Conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = client.Conn.Close()
				return
			}
		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				_ = client.Conn.Close()
				return
			}
		}
	}
}

// readLoop 读协程：只用于感知断开与刷新读超时，客户端消息忽略
func (h *Handler) readLoop(client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	}
}
