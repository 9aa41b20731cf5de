package repository

import (
	"context"

	"blog-backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// DeleteMatching 删除与 (接收者, 文章, 触发者, 类型) 匹配的通知
func (r *NotificationRepository) DeleteMatching(ctx context.Context, userID, postID, actorID uint, typ model.NotificationType) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ? AND actor_id = ? AND type = ?", userID, postID, actorID, typ).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

// ListUnseen 未读通知，最新在前
func (r *NotificationRepository) ListUnseen(ctx context.Context, userID uint) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Preload("Post").
		Where("user_id = ? AND seen = ?", userID, false).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// GetForUser 按 id 与接收者同时匹配
func (r *NotificationRepository) GetForUser(ctx context.Context, id, userID uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkSeen(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).Update("seen", true).Error
}

// Count 按条件统计通知数量
func (r *NotificationRepository) Count(ctx context.Context, userID uint, typ model.NotificationType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).Count(&count).Error
	return count, err
}
