package service

import (
	"context"
	"strings"

	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/pkg/logger"

	"go.uber.org/zap"
)

// InteractionService 点赞、收藏与评论
// 写入与通知在同一事务中完成，推送在提交之后
type InteractionService struct {
	repos  *repository.Repositories
	notify notifier
}

func NewInteractionService(repos *repository.Repositories, pusher Pusher) *InteractionService {
	return &InteractionService{repos: repos, notify: notifier{pusher: pusher}}
}

// ToggleResult 切换后的状态
type ToggleResult struct {
	Active bool
	Count  int64
}

// ToggleLike 已点赞则取消并删除对应通知，否则点赞并通知作者（自己点赞不通知）
func (s *InteractionService) ToggleLike(ctx context.Context, identity, postID uint) (*ToggleResult, error) {
	if postID == 0 {
		return nil, NewValidationError("Missing required fields.")
	}
	var (
		res     ToggleResult
		created *model.Notification
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			if repository.IsNotFound(err) {
				return NewNotFoundError("Post")
			}
			return err
		}

		removed, err := tx.Posts.RemoveLike(ctx, post.ID, identity)
		if err != nil {
			return err
		}
		if removed {
			if _, err := tx.Notifications.DeleteMatching(ctx, post.UserID, post.ID, identity, model.NotificationLike); err != nil {
				return err
			}
		} else {
			inserted, err := tx.Posts.AddLike(ctx, post.ID, identity)
			if err != nil {
				return err
			}
			res.Active = true
			if inserted && identity != post.UserID {
				created = newNotification(post, identity, model.NotificationLike)
				if err := tx.Notifications.Create(ctx, created); err != nil {
					return err
				}
				created.Post = post
			}
		}

		res.Count, err = tx.Posts.CountLikes(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify.created(created)
	logger.Debug("切换点赞", zap.Uint("user_id", identity), zap.Uint("post_id", postID), zap.Bool("liked", res.Active))
	return &res, nil
}

// ToggleBookmark 与点赞相同的切换与通知规则
func (s *InteractionService) ToggleBookmark(ctx context.Context, identity, postID uint) (*ToggleResult, error) {
	if postID == 0 {
		return nil, NewValidationError("Missing required fields.")
	}
	var (
		res     ToggleResult
		created *model.Notification
	)
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			if repository.IsNotFound(err) {
				return NewNotFoundError("Post")
			}
			return err
		}

		removed, err := tx.Bookmarks.Remove(ctx, identity, post.ID)
		if err != nil {
			return err
		}
		if removed {
			if _, err := tx.Notifications.DeleteMatching(ctx, post.UserID, post.ID, identity, model.NotificationBookmark); err != nil {
				return err
			}
		} else {
			inserted, err := tx.Bookmarks.Add(ctx, identity, post.ID)
			if err != nil {
				return err
			}
			res.Active = true
			if inserted && identity != post.UserID {
				created = newNotification(post, identity, model.NotificationBookmark)
				if err := tx.Notifications.Create(ctx, created); err != nil {
					return err
				}
				created.Post = post
			}
		}

		res.Count, err = tx.Bookmarks.CountByPost(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify.created(created)
	return &res, nil
}

// CommentInput 评论参数，匿名评论时 UserID 为 0
type CommentInput struct {
	PostID  uint
	UserID  uint
	Name    string
	Email   string
	Comment string
}

// AddComment 创建评论，并始终通知文章作者
func (s *InteractionService) AddComment(ctx context.Context, in CommentInput) (*model.Comment, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	body := strings.TrimSpace(in.Comment)
	if in.PostID == 0 || name == "" || email == "" || body == "" {
		return nil, NewValidationError("Missing required fields.")
	}

	comment := &model.Comment{PostID: in.PostID, Name: name, Email: email, Comment: body}
	if in.UserID != 0 {
		uid := in.UserID
		comment.UserID = &uid
	}

	var created *model.Notification
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		post, err := tx.Posts.GetByID(ctx, in.PostID)
		if err != nil {
			if repository.IsNotFound(err) {
				return NewNotFoundError("Post")
			}
			return err
		}
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		created = newNotification(post, in.UserID, model.NotificationComment)
		if err := tx.Notifications.Create(ctx, created); err != nil {
			return err
		}
		created.Post = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.created(created)
	return comment, nil
}

// newNotification actorID 为 0 表示匿名
func newNotification(post *model.Post, actorID uint, typ model.NotificationType) *model.Notification {
	postID := post.ID
	n := &model.Notification{
		UserID: post.UserID,
		PostID: &postID,
		Type:   typ,
	}
	if actorID != 0 {
		n.ActorID = &actorID
	}
	return n
}
