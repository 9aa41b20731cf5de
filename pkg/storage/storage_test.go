package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blog-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)

	rel, err := store.Save(context.Background(), "image/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "image/a.png", rel)

	data, err := os.ReadFile(filepath.Join(root, "image", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = store.Save(context.Background(), "../escape.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)

	require.NoError(t, store.Delete(context.Background(), rel))
	assert.NoFileExists(t, filepath.Join(root, "image", "a.png"))
	// 重复删除不报错
	require.NoError(t, store.Delete(context.Background(), rel))
	assert.Error(t, store.Delete(context.Background(), "../escape.png"))
}

func uploadHeader(t *testing.T, filename, body string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveImage(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Driver: "local", MediaRoot: t.TempDir()})
	require.NoError(t, err)

	rel, err := SaveImage(context.Background(), store, "image", uploadHeader(t, "Cover.JPG", "jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "image/"))
	assert.True(t, strings.HasSuffix(rel, ".jpg"))

	_, err = SaveImage(context.Background(), store, "image", uploadHeader(t, "script.sh", "#!"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
