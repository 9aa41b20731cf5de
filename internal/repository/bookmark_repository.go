package repository

import (
	"context"

	"blog-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Add 收藏，已存在时不做任何事；返回是否新插入
func (r *BookmarkRepository) Add(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Bookmark{UserID: userID, PostID: postID})
	return res.RowsAffected == 1, res.Error
}

// Remove 取消收藏；返回是否确实删除
func (r *BookmarkRepository) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Bookmark{})
	return res.RowsAffected > 0, res.Error
}

// CountByUser 用户收藏的数量
func (r *BookmarkRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *BookmarkRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
