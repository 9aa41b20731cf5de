package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 聚合全部仓储，便于在同一事务内组合调用
type Repositories struct {
	db *gorm.DB

	Users         *UserRepository
	Profiles      *ProfileRepository
	Categories    *CategoryRepository
	Posts         *PostRepository
	Comments      *CommentRepository
	Bookmarks     *BookmarkRepository
	Notifications *NotificationRepository
}

// New 基于给定连接（或事务）创建仓储集合
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		Categories:    NewCategoryRepository(db),
		Posts:         NewPostRepository(db),
		Comments:      NewCommentRepository(db),
		Bookmarks:     NewBookmarkRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Transaction 在事务中执行 fn，fn 内只能使用传入的 tx 仓储
// fn 返回错误时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// DB 返回底层连接
func (r *Repositories) DB() *gorm.DB {
	return r.db
}
