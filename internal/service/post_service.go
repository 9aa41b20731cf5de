package service

import (
	"context"

	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/pkg/metrics"
)

// PostService 公开的分类与文章读取
type PostService struct {
	repos *repository.Repositories
}

func NewPostService(repos *repository.Repositories) *PostService {
	return &PostService{repos: repos}
}

// PostWithLikes 文章及点赞用户ID
type PostWithLikes struct {
	Post  *model.Post
	Likes []uint
}

// PostList 文章列表及每篇文章的点赞用户ID
type PostList struct {
	Posts []model.Post
	Likes map[uint][]uint
}

func (s *PostService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repos.Categories.List(ctx)
}

// ListPosts 全部已发布文章，最新在前
func (s *PostService) ListPosts(ctx context.Context) (*PostList, error) {
	posts, err := s.repos.Posts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.withLikes(ctx, posts)
}

// ListPostsByCategory 分类下已发布文章
func (s *PostService) ListPostsByCategory(ctx context.Context, categorySlug string) (*PostList, error) {
	category, err := s.repos.Categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFoundError("Category")
		}
		return nil, err
	}
	posts, err := s.repos.Posts.ListActiveByCategory(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	return s.withLikes(ctx, posts)
}

// GetPostBySlug 读取已发布文章，每次成功读取浏览量 +1
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*PostWithLikes, error) {
	post, err := s.repos.Posts.GetActiveBySlug(ctx, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, NewNotFoundError("Post")
		}
		return nil, err
	}
	if err := s.repos.Posts.IncrementViews(ctx, post.ID); err != nil {
		return nil, err
	}
	post.Views++
	metrics.PostViews.Inc()

	likes, err := s.repos.Posts.LikedUserIDs(ctx, []uint{post.ID})
	if err != nil {
		return nil, err
	}
	return &PostWithLikes{Post: post, Likes: likes[post.ID]}, nil
}

func (s *PostService) withLikes(ctx context.Context, posts []model.Post) (*PostList, error) {
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
