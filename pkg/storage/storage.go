package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"blog-backend/config"

	"github.com/google/uuid"
)

// 允许上传的图片扩展名
var allowedImageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ErrUnsupportedType 不支持的文件类型
var ErrUnsupportedType = errors.New("unsupported image type")

// Store 媒体文件存储，返回相对路径（如 image/xxx.jpg）
type Store interface {
	Save(ctx context.Context, relPath, contentType string, r io.Reader) (string, error)
	// Delete 删除已保存的文件，文件不存在时不报错
	Delete(ctx context.Context, relPath string) error
}

// New 按配置创建存储
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot), nil
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}

// SaveImage 保存上传的图片到 dir 下，文件名使用 uuid
func SaveImage(ctx context.Context, store Store, dir string, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := allowedImageExt[ext]
	if !ok {
		return "", ErrUnsupportedType
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()

	return store.Save(ctx, path.Join(dir, uuid.NewString()+ext), contentType, f)
}
