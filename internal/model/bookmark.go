package model

import "time"

// Bookmark 收藏，(user_id, post_id) 唯一

type Bookmark struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_post;comment:收藏用户"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_post;index;comment:收藏文章"`
	CreatedAt time.Time `gorm:"comment:收藏时间"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Bookmark) TableName() string { return "bookmarks" }
