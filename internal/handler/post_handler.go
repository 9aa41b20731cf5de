package handler

import (
	"blog-backend/internal/service"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostHandler 公开浏览与读者互动
type PostHandler struct {
	posts        *service.PostService
	interactions *service.InteractionService
}

func NewPostHandler(posts *service.PostService, interactions *service.InteractionService) *PostHandler {
	return &PostHandler{posts: posts, interactions: interactions}
}

func (h *PostHandler) ListCategories(c *gin.Context) {
	list, err := h.posts.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterCategoryList(list))
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	list, err := h.posts.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPostDetailList(list.Posts, list.Likes))
}

func (h *PostHandler) ListPostsByCategory(c *gin.Context) {
	list, err := h.posts.ListPostsByCategory(c.Request.Context(), c.Param("category_slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPostDetailList(list.Posts, list.Likes))
}

// GetPost 按 slug 读取文章，浏览量 +1
func (h *PostHandler) GetPost(c *gin.Context) {
	got, err := h.posts.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPostDetail(got.Post, got.Likes))
}

type postIDRequest struct {
	PostID uint `json:"post_id" form:"post_id" binding:"required"`
}

// LikePost 切换点赞
func (h *PostHandler) LikePost(c *gin.Context) {
	var r postIDRequest
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.interactions.ToggleLike(c.Request.Context(), jwt.GetUserID(c), r.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	data := gin.H{"liked": res.Active, "likes_count": res.Count}
	if res.Active {
		response.Created(c, "Post Liked", data)
		return
	}
	response.SuccessWithMessage(c, "Post Disliked", data)
}

// BookmarkPost 切换收藏
func (h *PostHandler) BookmarkPost(c *gin.Context) {
	var r postIDRequest
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.interactions.ToggleBookmark(c.Request.Context(), jwt.GetUserID(c), r.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	data := gin.H{"bookmarked": res.Active, "bookmarks_count": res.Count}
	if res.Active {
		response.Created(c, "Post Bookmarked", data)
		return
	}
	response.SuccessWithMessage(c, "Post Un-Bookmarked", data)
}

// CommentPost 发表评论，允许匿名
func (h *PostHandler) CommentPost(c *gin.Context) {
	type req struct {
		PostID  uint   `json:"post_id" form:"post_id" binding:"required"`
		Name    string `json:"name" form:"name" binding:"required"`
		Email   string `json:"email" form:"email" binding:"required,email"`
		Comment string `json:"comment" form:"comment" binding:"required"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	comment, err := h.interactions.AddComment(c.Request.Context(), service.CommentInput{
		PostID:  r.PostID,
		UserID:  jwt.GetUserID(c),
		Name:    r.Name,
		Email:   r.Email,
		Comment: r.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Comment Sent", response.FilterCommentInfo(comment))
}
