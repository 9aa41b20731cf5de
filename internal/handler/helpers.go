package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"blog-backend/internal/service"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/response"
	"blog-backend/pkg/storage"
	"blog-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError 将业务错误映射为 HTTP 状态码，5xx 记录日志
func respondError(c *gin.Context, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		appErr = service.NewInternalError(err)
	}

	switch appErr.Kind {
	case service.KindValidation:
		response.BadRequest(c, appErr.Message)
	case service.KindNotFound:
		response.NotFound(c, appErr.Message)
	case service.KindPermissionDenied:
		response.Forbidden(c, appErr.Message)
	case service.KindUnauthenticated:
		response.Unauthorized(c, appErr.Message)
	default:
		logger.Error("请求处理失败",
			zap.String("request_id", c.GetString(logger.ContextRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c, appErr.Message)
	}
}

// bindError 参数绑定失败，返回字段级详情
func bindError(c *gin.Context, err error) {
	response.ErrorWithData(c, http.StatusBadRequest, "Invalid request payload.", validation.ToDetails(err))
}

// uintParam 解析路径参数，失败时直接返回 400
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// uploadedImage 保存 multipart 中的 image 文件；没有文件时返回空字符串
func uploadedImage(ctx context.Context, c *gin.Context, store storage.Store, dir string) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", service.NewValidationError("Invalid image upload.")
	}
	if store == nil {
		return "", service.NewInternalError(errors.New("media store is not configured"))
	}
	path, err := storage.SaveImage(ctx, store, dir, fh)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", service.NewValidationError("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
		return "", err
	}
	return path, nil
}
