package handler

import (
	"blog-backend/internal/service"
	"blog-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	type req struct {
		FullName  string `json:"full_name" form:"full_name"`
		Email     string `json:"email" form:"email" binding:"required,email"`
		Password  string `json:"password" form:"password" binding:"required,pwd"`
		Password2 string `json:"password2" form:"password2" binding:"required"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Email:     r.Email,
		FullName:  r.FullName,
		Password:  r.Password,
		Password2: r.Password2,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "User registered successfully.", response.FilterUserInfo(user))
}

// Login 邮箱密码换取 access + refresh
func (h *AuthHandler) Login(c *gin.Context) {
	type req struct {
		Email    string `json:"email" form:"email" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	pair, err := h.service.Login(c.Request.Context(), r.Email, r.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, pair)
}

// Refresh 轮换 refresh 令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	type req struct {
		Refresh string `json:"refresh" form:"refresh" binding:"required"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), r.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, pair)
}

// PasswordResetEmail 发送重置密码邮件，响应中不回显验证码
func (h *AuthHandler) PasswordResetEmail(c *gin.Context) {
	if _, err := h.service.RequestPasswordReset(c.Request.Context(), c.Param("email")); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Password reset email sent.", nil)
}

// PasswordChange 使用 OTP 与重置令牌设置新密码
func (h *AuthHandler) PasswordChange(c *gin.Context) {
	type req struct {
		OTP        string `json:"otp" form:"otp"`
		UIDB64     string `json:"uidb64" form:"uidb64"`
		ResetToken string `json:"reset_token" form:"reset_token"`
		Password   string `json:"password" form:"password"`
	}
	var r req
	if err := c.ShouldBind(&r); err != nil {
		bindError(c, err)
		return
	}

	err := h.service.ConfirmPasswordReset(c.Request.Context(), service.ConfirmResetInput{
		UIDB64:     r.UIDB64,
		OTP:        r.OTP,
		ResetToken: r.ResetToken,
		Password:   r.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Password Changed Successfully", nil)
}
