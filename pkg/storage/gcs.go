package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore 写入 Google Cloud Storage，返回对象路径
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore credsPath 为空时使用 ADC
func NewGCSStore(ctx context.Context, bucket, credsPath string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("未配置 GCS bucket")
	}
	var (
		client *storage.Client
		err    error
	)
	if credsPath == "" {
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, relPath, contentType string, r io.Reader) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(relPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // 小文件不分块
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("上传 GCS 对象失败: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("上传 GCS 对象失败: %w", err)
	}
	return relPath, nil
}

func (s *GCSStore) Delete(ctx context.Context, relPath string) error {
	err := s.client.Bucket(s.bucket).Object(relPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("删除 GCS 对象失败: %w", err)
	}
	return nil
}

// PublicURL 对象的公开访问地址
func (s *GCSStore) PublicURL(relPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, relPath)
}

// Close 关闭客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
