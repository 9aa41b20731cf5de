package service

import (
	"blog-backend/internal/model"
	"blog-backend/pkg/metrics"
	"blog-backend/pkg/response"
)

// Pusher 实时推送通道（WebSocket 管理器实现）
type Pusher interface {
	Push(userID uint, event string, payload interface{})
}

// notifier 事务提交后推送通知，推送失败不影响业务结果
type notifier struct {
	pusher Pusher
}

func (n notifier) created(list ...*model.Notification) {
	for _, item := range list {
		if item == nil {
			continue
		}
		metrics.NotificationsCreated.WithLabelValues(string(item.Type)).Inc()
		if n.pusher != nil {
			n.pusher.Push(item.UserID, "notification", response.FilterNotificationInfo(item))
		}
	}
}
