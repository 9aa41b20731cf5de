package repository

import (
	"context"

	"blog-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// slug 冲突时的最大重试次数
const maxSlugAttempts = 5

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// withDetail 预加载详情所需的关联
func withDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User.Profile").
		Preload("Category", withPostCount).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		})
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.created_at DESC, posts.id DESC")
}

// Create 创建文章，slug 冲突时重新生成
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	generated := post.Slug == ""
	var err error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		err = r.db.WithContext(ctx).Create(post).Error
		if err == nil || !generated || !IsDuplicate(err) {
			return err
		}
		post.ID = 0
		post.Slug = ""
	}
	return err
}

// Update 覆盖可编辑字段（包含零值）
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("category_id", "title", "image", "description", "tags", "status").
		Updates(post).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOwned 按 id 与作者同时匹配，非作者视为不存在
func (r *PostRepository) GetOwned(ctx context.Context, id, userID uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOwnedDetail 同 GetOwned，但带详情关联
func (r *PostRepository) GetOwnedDetail(ctx context.Context, id, userID uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Scopes(withDetail).
		Where("posts.id = ? AND posts.user_id = ?", id, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) GetActiveBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Scopes(withDetail).
		Where("posts.slug = ? AND posts.status = ?", slug, model.PostStatusActive).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) ListActive(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).Scopes(withDetail, newestFirst).
		Where("posts.status = ?", model.PostStatusActive).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) ListActiveByCategory(ctx context.Context, categoryID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).Scopes(withDetail, newestFirst).
		Where("posts.status = ? AND posts.category_id = ?", model.PostStatusActive, categoryID).
		Find(&posts).Error
	return posts, err
}

// ListByUser 作者的全部文章（所有状态），按 id 倒序
func (r *PostRepository) ListByUser(ctx context.Context, userID uint) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).Scopes(withDetail).
		Where("posts.user_id = ?", userID).Order("posts.id DESC").Find(&posts).Error
	return posts, err
}

// IncrementViews 原子自增浏览量
func (r *PostRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Delete 删除文章及其评论、点赞、收藏、通知，调用方负责事务
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	for _, m := range []interface{}{&model.Notification{}, &model.Comment{}, &model.PostLike{}, &model.Bookmark{}} {
		if err := db.Where("post_id = ?", id).Delete(m).Error; err != nil {
			return err
		}
	}
	return db.Delete(&model.Post{}, id).Error
}

// AddLike 点赞，已存在时不做任何事；返回是否新插入
func (r *PostRepository) AddLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.PostLike{PostID: postID, UserID: userID})
	return res.RowsAffected == 1, res.Error
}

// RemoveLike 取消点赞；返回是否确实删除
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
	return res.RowsAffected > 0, res.Error
}

func (r *PostRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// LikedUserIDs 批量获取文章的点赞用户
func (r *PostRepository) LikedUserIDs(ctx context.Context, postIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var likes []model.PostLike
	err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).
		Order("created_at ASC").Find(&likes).Error
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.PostID] = append(out[l.PostID], l.UserID)
	}
	return out, nil
}

// AuthorTotals 作者维度的统计
type AuthorTotals struct {
	Views int64
	Posts int64
	Likes int64
}

func (r *PostRepository) AuthorTotals(ctx context.Context, userID uint) (*AuthorTotals, error) {
	db := r.db.WithContext(ctx)
	var totals AuthorTotals

	row := struct {
		Views int64
		Posts int64
	}{}
	err := db.Model(&model.Post{}).
		Select("COALESCE(SUM(views), 0) AS views, COUNT(*) AS posts").
		Where("user_id = ?", userID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	totals.Views, totals.Posts = row.Views, row.Posts

	err = db.Model(&model.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.user_id = ?", userID).Count(&totals.Likes).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
