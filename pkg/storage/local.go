package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore 写入本地媒体目录
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// resolve 校验相对路径不越出根目录
func (s *LocalStore) resolve(relPath string) (string, string, error) {
	clean := filepath.ToSlash(filepath.Clean(relPath))
	if clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(clean) {
		return "", "", fmt.Errorf("非法的存储路径: %s", relPath)
	}
	return clean, filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStore) Save(ctx context.Context, relPath, _ string, r io.Reader) (string, error) {
	clean, full, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建媒体目录失败: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("创建媒体文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("写入媒体文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("写入媒体文件失败: %w", err)
	}
	return clean, nil
}

func (s *LocalStore) Delete(_ context.Context, relPath string) error {
	_, full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("删除媒体文件失败: %w", err)
	}
	return nil
}
