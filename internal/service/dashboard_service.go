package service

import (
	"context"
	"strings"

	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/pkg/logger"

	"go.uber.org/zap"
)

// DashboardService 作者后台：统计、文章管理、评论回复与通知
type DashboardService struct {
	repos *repository.Repositories
}

func NewDashboardService(repos *repository.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

// AuthorStats 作者统计
type AuthorStats struct {
	Views     int64
	Posts     int64
	Likes     int64
	Bookmarks int64
}

// AuthorStats 作者统计，无数据时全部为 0
func (s *DashboardService) AuthorStats(ctx context.Context, identity uint) (*AuthorStats, error) {
	totals, err := s.repos.Posts.AuthorTotals(ctx, identity)
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.repos.Bookmarks.CountByUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &AuthorStats{
		Views:     totals.Views,
		Posts:     totals.Posts,
		Likes:     totals.Likes,
		Bookmarks: bookmarks,
	}, nil
}

// AuthorPosts 作者全部文章（含草稿与禁用）
func (s *DashboardService) AuthorPosts(ctx context.Context, identity uint) (*PostList, error) {
	posts, err := s.repos.Posts.ListByUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	likes, err := s.repos.Posts.LikedUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &PostList{Posts: posts, Likes: likes}, nil
}

func (s *DashboardService) AuthorComments(ctx context.Context, identity uint) ([]model.Comment, error) {
	return s.repos.Comments.ListForPostOwner(ctx, identity)
}

func (s *DashboardService) AuthorUnseenNotifications(ctx context.Context, identity uint) ([]model.Notification, error) {
	return s.repos.Notifications.ListUnseen(ctx, identity)
}

// MarkNotificationSeen 只能标记发给自己的通知
func (s *DashboardService) MarkNotificationSeen(ctx context.Context, identity, notificationID uint) error {
	if notificationID == 0 {
		return NewValidationError("Missing required fields.")
	}
	n, err := s.repos.Notifications.GetForUser(ctx, notificationID, identity)
	if err != nil {
		if repository.IsNotFound(err) {
			return NewNotFoundError("Notification")
		}
		return err
	}
	return s.repos.Notifications.MarkSeen(ctx, n.ID)
}

// ReplyToComment 只能回复自己文章下的评论
func (s *DashboardService) ReplyToComment(ctx context.Context, identity, commentID uint, reply string) (*model.Comment, error) {
	reply = strings.TrimSpace(reply)
	if commentID == 0 || reply == "" {
		return nil, NewValidationError("Missing required fields.")
	}
	comment, err := s.repos.Comments.GetForPostOwner(ctx, commentID, identity)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFoundError("Comment")
		}
		return nil, err
	}
	if err := s.repos.Comments.UpdateReply(ctx, comment.ID, reply); err != nil {
		return nil, err
	}
	comment.Reply = reply
	return comment, nil
}

// PostInput 创建/编辑文章参数，Image 为已保存的媒体路径
type PostInput struct {
	Title       string
	Image       string
	Description string
	Tags        string
	CategoryID  uint
	Status      string
}

func (in PostInput) validate() (model.PostStatus, error) {
	if strings.TrimSpace(in.Title) == "" || in.CategoryID == 0 || in.Status == "" {
		return "", NewValidationError("Missing required fields.")
	}
	status := model.PostStatus(in.Status)
	if !status.Valid() {
		return "", NewValidationError("Invalid post status.")
	}
	return status, nil
}

func (s *DashboardService) ensureCategory(ctx context.Context, repos *repository.Repositories, id uint) error {
	if _, err := repos.Categories.GetByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return NewNotFoundError("Category")
		}
		return err
	}
	return nil
}

// CheckPostInput 校验字段与分类，上传文件前调用
func (s *DashboardService) CheckPostInput(ctx context.Context, in PostInput) error {
	if _, err := in.validate(); err != nil {
		return err
	}
	return s.ensureCategory(ctx, s.repos, in.CategoryID)
}

// CreatePost 以当前身份为作者创建文章
func (s *DashboardService) CreatePost(ctx context.Context, identity uint, in PostInput) (*model.Post, error) {
	status, err := in.validate()
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, s.repos, in.CategoryID); err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:      identity,
		CategoryID:  in.CategoryID,
		Title:       strings.TrimSpace(in.Title),
		Image:       in.Image,
		Description: in.Description,
		Tags:        in.Tags,
		Status:      status,
	}
	if err := s.repos.Posts.Create(ctx, post); err != nil {
		return nil, err
	}

	logger.Info("文章创建成功", zap.Uint("post_id", post.ID), zap.Uint("user_id", identity), zap.String("slug", post.Slug))
	return post, nil
}

// GetOwnPost 作者查看自己的文章（任意状态）
func (s *DashboardService) GetOwnPost(ctx context.Context, identity, postID uint) (*PostWithLikes, error) {
	post, err := s.repos.Posts.GetOwnedDetail(ctx, postID, identity)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFoundError("Post")
		}
		return nil, err
	}
	likes, err := s.repos.Posts.LikedUserIDs(ctx, []uint{post.ID})
	if err != nil {
		return nil, err
	}
	return &PostWithLikes{Post: post, Likes: likes[post.ID]}, nil
}

// keepsImage 前端未选择新图片时会传这些值
func keepsImage(image string) bool {
	switch strings.TrimSpace(image) {
	case "", "undefined", "null":
		return true
	}
	return false
}

// EditPost 非作者与不存在同样返回 NotFound
func (s *DashboardService) EditPost(ctx context.Context, identity, postID uint, in PostInput) (*model.Post, error) {
	status, err := in.validate()
	if err != nil {
		return nil, err
	}

	var post *model.Post
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		post, err = tx.Posts.GetOwned(ctx, postID, identity)
		if err != nil {
			if repository.IsNotFound(err) {
				return NewNotFoundError("Post")
			}
			return err
		}
		if err := s.ensureCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}

		post.Title = strings.TrimSpace(in.Title)
		post.Description = in.Description
		post.Tags = in.Tags
		post.CategoryID = in.CategoryID
		post.Status = status
		if !keepsImage(in.Image) {
			post.Image = in.Image
		}
		return tx.Posts.Update(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost 删除自己的文章及其评论、点赞、收藏与通知
func (s *DashboardService) DeletePost(ctx context.Context, identity, postID uint) error {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetOwned(ctx, postID, identity)
		if err != nil {
			if repository.IsNotFound(err) {
				return NewNotFoundError("Post")
			}
			return err
		}
		return tx.Posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return err
	}
	logger.Info("文章已删除", zap.Uint("post_id", postID), zap.Uint("user_id", identity))
	return nil
}
