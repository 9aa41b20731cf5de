package repository

import (
	"context"

	"blog-backend/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetForPostOwner 获取评论，要求评论所在文章属于 ownerID
func (r *CommentRepository) GetForPostOwner(ctx context.Context, id, ownerID uint) (*model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("comments.id = ? AND posts.user_id = ?", id, ownerID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForPostOwner 作者所有文章下的评论
func (r *CommentRepository) ListForPostOwner(ctx context.Context, ownerID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Post").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ?", ownerID).
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) UpdateReply(ctx context.Context, id uint, reply string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).
		Update("reply", reply).Error
}
