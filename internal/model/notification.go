package model

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	NotificationLike     NotificationType = "Like"
	NotificationComment  NotificationType = "Comment"
	NotificationBookmark NotificationType = "Bookmark"
)

// Notification 通知
// UserID 为接收者（文章作者），ActorID 为触发者（匿名评论时为空）

type Notification struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"not null;index:idx_notification_user_seen;comment:接收者"`
	ActorID   *uint            `gorm:"index;comment:触发者"`
	PostID    *uint            `gorm:"index;comment:相关文章"`
	Type      NotificationType `gorm:"type:varchar(16);not null;comment:类型"`
	Seen      bool             `gorm:"not null;default:false;index:idx_notification_user_seen;comment:是否已读"`
	CreatedAt time.Time        `gorm:"index;comment:创建时间"`

	User  *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Actor *User `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL"`
	Post  *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
