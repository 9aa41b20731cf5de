package handler

import (
	"blog-backend/internal/service"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/response"
	"blog-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service *service.ProfileService
	store   storage.Store
}

func NewProfileHandler(s *service.ProfileService, store storage.Store) *ProfileHandler {
	return &ProfileHandler{service: s, store: store}
}

// GetProfile 查看任意用户资料
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}
	user, profile, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterProfileInfo(profile, user))
}

// UpdateProfile 仅本人可修改，支持 JSON 或 multipart（image 文件）
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}
	type req struct {
		FullName *string `json:"full_name" form:"full_name"`
		Bio      *string `json:"bio" form:"bio"`
		About    *string `json:"about" form:"about"`
		Author   *bool   `json:"author" form:"author"`
		Country  *string `json:"country" form:"country"`
		Facebook *string `json:"facebook" form:"facebook"`
		Twitter  *string `json:"twitter" form:"twitter"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	in := service.ProfileUpdate{
		FullName: r.FullName,
		Bio:      r.Bio,
		About:    r.About,
		Author:   r.Author,
		Country:  r.Country,
		Facebook: r.Facebook,
		Twitter:  r.Twitter,
	}
	// 先确认资料存在且属于本人，再保存上传文件
	if _, _, err := h.service.Get(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	if jwt.GetUserID(c) != userID {
		respondError(c, service.NewPermissionDeniedError("You do not have permission to perform this action."))
		return
	}
	image, err := uploadedImage(c.Request.Context(), c, h.store, "image")
	if err != nil {
		respondError(c, err)
		return
	}
	if image != "" {
		in.Image = &image
	}

	user, profile, err := h.service.Update(c.Request.Context(), jwt.GetUserID(c), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Profile updated successfully.", response.FilterProfileInfo(profile, user))
}
