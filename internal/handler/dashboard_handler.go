package handler

import (
	"blog-backend/internal/service"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/response"
	"blog-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler 作者后台，所有接口都以令牌中的身份为准
type DashboardHandler struct {
	service *service.DashboardService
	store   storage.Store
}

func NewDashboardHandler(s *service.DashboardService, store storage.Store) *DashboardHandler {
	return &DashboardHandler{service: s, store: store}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.AuthorStats(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, &response.AuthorStats{
		Views:     stats.Views,
		Posts:     stats.Posts,
		Likes:     stats.Likes,
		Bookmarks: stats.Bookmarks,
	})
}

func (h *DashboardHandler) Posts(c *gin.Context) {
	list, err := h.service.AuthorPosts(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPostDetailList(list.Posts, list.Likes))
}

func (h *DashboardHandler) Comments(c *gin.Context) {
	list, err := h.service.AuthorComments(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterCommentList(list))
}

// Notifications 未读通知
func (h *DashboardHandler) Notifications(c *gin.Context) {
	list, err := h.service.AuthorUnseenNotifications(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterNotificationList(list))
}

func (h *DashboardHandler) MarkNotificationSeen(c *gin.Context) {
	type req struct {
		NotiID uint `json:"noti_id" form:"noti_id"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.MarkNotificationSeen(c.Request.Context(), jwt.GetUserID(c), r.NotiID); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Notification marked as seen.", nil)
}

func (h *DashboardHandler) ReplyComment(c *gin.Context) {
	type req struct {
		CommentID uint   `json:"comment_id" form:"comment_id"`
		Reply     string `json:"reply" form:"reply"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	comment, err := h.service.ReplyToComment(c.Request.Context(), jwt.GetUserID(c), r.CommentID, r.Reply)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Comment response sent.", response.FilterCommentInfo(comment))
}

// postRequest 创建/编辑文章
// multipart 中的 image 可能是文件也可能是字符串，表单绑定时跳过，在 bindPost 中单独读取
type postRequest struct {
	Title       string `json:"title" form:"title"`
	Image       string `json:"image" form:"-"`
	Description string `json:"description" form:"description"`
	Tags        string `json:"tags" form:"tags"`
	Category    uint   `json:"category" form:"category"`
	PostStatus  string `json:"post_status" form:"post_status" binding:"omitempty,post_status"`
}

func (h *DashboardHandler) bindPost(c *gin.Context) (service.PostInput, bool) {
	var r postRequest
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return service.PostInput{}, false
	}
	if c.ContentType() != gin.MIMEJSON {
		r.Image = c.PostForm("image")
	}
	in := service.PostInput{
		Title:       r.Title,
		Image:       r.Image,
		Description: r.Description,
		Tags:        r.Tags,
		CategoryID:  r.Category,
		Status:      r.PostStatus,
	}
	return in, true
}

// attachImage 保存上传的图片，返回新保存的路径（没有上传时为空）
func (h *DashboardHandler) attachImage(c *gin.Context, in *service.PostInput) (string, bool) {
	image, err := uploadedImage(c.Request.Context(), c, h.store, "image")
	if err != nil {
		respondError(c, err)
		return "", false
	}
	if image != "" {
		in.Image = image
	}
	return image, true
}

// discardImage 写库失败时删除本次上传的文件
func (h *DashboardHandler) discardImage(c *gin.Context, image string) {
	if image == "" {
		return
	}
	if err := h.store.Delete(c.Request.Context(), image); err != nil {
		logger.Warn("清理上传文件失败", zap.String("image", image), zap.Error(err))
	}
}

func (h *DashboardHandler) CreatePost(c *gin.Context) {
	in, ok := h.bindPost(c)
	if !ok {
		return
	}
	if err := h.service.CheckPostInput(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	image, ok := h.attachImage(c, &in)
	if !ok {
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), jwt.GetUserID(c), in)
	if err != nil {
		h.discardImage(c, image)
		respondError(c, err)
		return
	}
	response.Created(c, "Post created successfully.", response.FilterPostWrite(post))
}

func (h *DashboardHandler) GetPost(c *gin.Context) {
	postID, ok := uintParam(c, "post_id")
	if !ok {
		return
	}
	got, err := h.service.GetOwnPost(c.Request.Context(), jwt.GetUserID(c), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPostDetail(got.Post, got.Likes))
}

func (h *DashboardHandler) EditPost(c *gin.Context) {
	postID, ok := uintParam(c, "post_id")
	if !ok {
		return
	}
	in, ok := h.bindPost(c)
	if !ok {
		return
	}
	// 先确认归属与参数，避免非作者或无效请求留下上传文件
	if _, err := h.service.GetOwnPost(c.Request.Context(), jwt.GetUserID(c), postID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.service.CheckPostInput(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return
	}
	image, ok := h.attachImage(c, &in)
	if !ok {
		return
	}

	post, err := h.service.EditPost(c.Request.Context(), jwt.GetUserID(c), postID, in)
	if err != nil {
		h.discardImage(c, image)
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Post updated successfully.", response.FilterPostWrite(post))
}

func (h *DashboardHandler) DeletePost(c *gin.Context) {
	postID, ok := uintParam(c, "post_id")
	if !ok {
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), jwt.GetUserID(c), postID); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Post deleted successfully.", nil)
}
