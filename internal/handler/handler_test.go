package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blog-backend/config"
	"blog-backend/internal/handler"
	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/internal/router"
	"blog-backend/internal/service"
	"blog-backend/internal/testutil"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/mailer"
	redisPkg "blog-backend/pkg/redis"
	"blog-backend/pkg/storage"
	"blog-backend/pkg/validation"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const strongPassword = "Tundra-Quartz-58"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type nopSender struct{}

func (nopSender) Send(context.Context, mailer.Message) error { return nil }

type brokenSender struct{}

func (brokenSender) Send(context.Context, mailer.Message) error {
	return errors.New("smtp unavailable")
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	jwt      *jwt.JWTService
	mediaDir string
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	return newServerWithSender(t, nopSender{})
}

func newServerWithSender(t *testing.T, sender mailer.Sender) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewDB(t)
	repos := repository.New(db)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{
		Secret:     "handler-test-secret",
		Issuer:     "blog-test",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: time.Hour,
		ResetTTL:   time.Hour,
	}, redisPkg.NewTokenBlacklist(rdb))
	mediaDir := t.TempDir()
	store := storage.NewLocalStore(mediaDir)

	r := router.Setup(router.Deps{
		Config:    &config.Config{CORS: config.CORSConfig{AllowOrigins: []string{"*"}}},
		JWT:       jwtSvc,
		Auth:      handler.NewAuthHandler(service.NewAuthService(repos, jwtSvc, sender, "http://front.test/reset")),
		Profile:   handler.NewProfileHandler(service.NewProfileService(repos), store),
		Post:      handler.NewPostHandler(service.NewPostService(repos), service.NewInteractionService(repos, nil)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(repos), store),
	})
	return &testServer{router: r, db: db, jwt: jwtSvc, mediaDir: mediaDir}
}

func (s *testServer) token(t *testing.T, u *model.User) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken(jwt.Identity{UserID: u.ID, Email: u.Email, Username: u.Username}, jwt.TokenTypeAccess)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(t, req, token)
}

func (s *testServer) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestWelcomeAndHealth(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Welcome")

	w, _ = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRegisterAndLoginFlow(t *testing.T) {
	s := newServer(t)
	body := gin.H{"email": "alice@example.com", "full_name": "Alice", "password": strongPassword, "password2": strongPassword}

	w, env := s.do(t, http.MethodPost, "/api/v1/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, string(env.Data), "password")

	w, env = s.do(t, http.MethodPost, "/api/v1/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrEmailTaken.Error(), env.Message)

	w, env = s.do(t, http.MethodPost, "/api/v1/token", gin.H{"email": "alice@example.com", "password": strongPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var pair jwt.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.NotEmpty(t, pair.Access)

	w, _ = s.do(t, http.MethodPost, "/api/v1/token/refresh", gin.H{"refresh": pair.Refresh}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/v1/token/refresh", gin.H{"refresh": pair.Refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/token", gin.H{"email": "alice@example.com", "password": "nope-nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterBindingErrors(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/register", gin.H{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &details))
	assert.Contains(t, details, "email")
	assert.Equal(t, "This field is required.", details["password"])
}

func TestPasswordChangeMissingFields(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/password-change", gin.H{"otp": "1234567"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields.", env.Message)

	w, _ = s.do(t, http.MethodGet, "/api/v1/password-reset/ghost@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPasswordResetEmailSendFailure(t *testing.T) {
	s := newServerWithSender(t, brokenSender{})
	testutil.MustUser(t, s.db, "dave@example.com")

	w, _ := s.do(t, http.MethodGet, "/api/v1/password-reset/dave@example.com", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLikeToggleOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	reader := testutil.MustUser(t, s.db, "reader@example.com")
	post := testutil.MustPost(t, s.db, owner, testutil.MustCategory(t, s.db, "Go"), "hello", model.PostStatusActive)

	w, _ := s.do(t, http.MethodPost, "/api/v1/post/like", gin.H{"post_id": post.ID}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := s.token(t, reader)
	w, env := s.do(t, http.MethodPost, "/api/v1/post/like", gin.H{"post_id": post.ID}, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Post Liked", env.Message)
	assert.JSONEq(t, `{"liked":true,"likes_count":1}`, string(env.Data))

	w, env = s.do(t, http.MethodPost, "/api/v1/post/like", gin.H{"post_id": post.ID}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post Disliked", env.Message)

	w, _ = s.do(t, http.MethodPost, "/api/v1/post/like", gin.H{"post_id": 999}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookmarkToggleOverHTTP(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	reader := testutil.MustUser(t, s.db, "reader@example.com")
	post := testutil.MustPost(t, s.db, owner, testutil.MustCategory(t, s.db, "Go"), "hello", model.PostStatusActive)
	tok := s.token(t, reader)

	w, env := s.do(t, http.MethodPost, "/api/v1/post/bookmark", gin.H{"post_id": post.ID}, tok)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Post Bookmarked", env.Message)

	w, env = s.do(t, http.MethodPost, "/api/v1/post/bookmark", gin.H{"post_id": post.ID}, tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post Un-Bookmarked", env.Message)
}

func TestAnonymousComment(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	post := testutil.MustPost(t, s.db, owner, testutil.MustCategory(t, s.db, "Go"), "hello", model.PostStatusActive)

	body := gin.H{"post_id": post.ID, "name": "Guest", "email": "guest@example.com", "comment": "Nice post"}
	w, env := s.do(t, http.MethodPost, "/api/v1/post/comment", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Comment Sent", env.Message)

	w, _ = s.do(t, http.MethodPost, "/api/v1/post/comment", body, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 作者后台能看到评论与通知
	ownerTok := s.token(t, owner)
	w, env = s.do(t, http.MethodGet, "/api/v1/dashboard/notifications", nil, ownerTok)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "Comment", notes[0]["type"])
	assert.Nil(t, notes[0]["actor"])
}

func TestPostDetailCountsViews(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	post := testutil.MustPost(t, s.db, owner, testutil.MustCategory(t, s.db, "Go"), "hello", model.PostStatusActive)

	for i := 1; i <= 2; i++ {
		w, env := s.do(t, http.MethodGet, "/api/v1/posts/"+post.Slug, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var detail struct {
			Views int64 `json:"views"`
			Slug  string
		}
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Equal(t, int64(i), detail.Views)
	}

	w, _ := s.do(t, http.MethodGet, "/api/v1/posts/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/posts/category/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditPostByNonOwnerIsNotFound(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	other := testutil.MustUser(t, s.db, "other@example.com")
	cat := testutil.MustCategory(t, s.db, "Go")
	post := testutil.MustPost(t, s.db, owner, cat, "hello", model.PostStatusActive)

	body := gin.H{"title": "hijacked", "category": cat.ID, "post_status": "Active", "image": "null"}
	path := "/api/v1/dashboard/post/" + jsonNumber(post.ID)

	w, _ := s.do(t, http.MethodPut, path, body, s.token(t, other))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, path, nil, s.token(t, other))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := s.do(t, http.MethodPut, path, body, s.token(t, owner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Post updated successfully.", env.Message)

	w, _ = s.do(t, http.MethodDelete, path, nil, s.token(t, owner))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePostWithUploadedImage(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	cat := testutil.MustCategory(t, s.db, "Go")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Cover Story"))
	require.NoError(t, mw.WriteField("category", jsonNumber(cat.ID)))
	require.NoError(t, mw.WriteField("post_status", "Draft"))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/post", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := s.serve(t, req, s.token(t, owner))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Post created successfully.", env.Message)

	var created writeDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.Image, "image/"))
	assert.Equal(t, owner.ID, created.User)
	assert.Equal(t, "Draft", created.Status)
	assert.FileExists(t, s.mediaDir+"/"+created.Image)

	w, _ = s.do(t, http.MethodPost, "/api/v1/dashboard/post", gin.H{"title": "x", "category": cat.ID, "post_status": "Published"}, s.token(t, owner))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileUpdateRequiresOwner(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	other := testutil.MustUser(t, s.db, "other@example.com")
	path := "/api/v1/profile/" + jsonNumber(owner.ID)

	w, _ := s.do(t, http.MethodPut, path, gin.H{"bio": "x"}, s.token(t, other))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPut, path, gin.H{"bio": "hello there"}, s.token(t, owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "hello there")

	w, _ = s.do(t, http.MethodGet, "/api/v1/profile/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartPost(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func mediaFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	}))
	return files
}

func TestRejectedPostLeavesNoUpload(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	cat := testutil.MustCategory(t, s.db, "Go")
	post := testutil.MustPost(t, s.db, owner, cat, "Existing", model.PostStatusActive)

	cases := []struct {
		name   string
		method string
		path   string
		fields map[string]string
		code   int
	}{
		{"create bad status", http.MethodPost, "/api/v1/dashboard/post", map[string]string{"title": "t", "category": jsonNumber(cat.ID), "post_status": "Published"}, http.StatusBadRequest},
		{"create missing title", http.MethodPost, "/api/v1/dashboard/post", map[string]string{"category": jsonNumber(cat.ID), "post_status": "Draft"}, http.StatusBadRequest},
		{"create unknown category", http.MethodPost, "/api/v1/dashboard/post", map[string]string{"title": "t", "category": "9999", "post_status": "Draft"}, http.StatusNotFound},
		{"edit unknown category", http.MethodPut, "/api/v1/dashboard/post/" + jsonNumber(post.ID), map[string]string{"title": "t", "category": "9999", "post_status": "Draft"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartPost(t, tc.fields, "cover.png")
			req := httptest.NewRequest(tc.method, tc.path, body)
			req.Header.Set("Content-Type", ct)
			w, _ := s.serve(t, req, s.token(t, owner))
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, mediaFiles(t, s.mediaDir))
}

func TestEditPostReplacesUploadedImage(t *testing.T) {
	s := newServer(t)
	owner := testutil.MustUser(t, s.db, "owner@example.com")
	cat := testutil.MustCategory(t, s.db, "Go")
	post := testutil.MustPost(t, s.db, owner, cat, "Existing", model.PostStatusActive)
	path := "/api/v1/dashboard/post/" + jsonNumber(post.ID)
	fields := map[string]string{"title": "Renamed", "category": jsonNumber(cat.ID), "post_status": "Active", "image": "undefined"}

	body, ct := multipartPost(t, fields, "")
	req := httptest.NewRequest(http.MethodPut, path, body)
	req.Header.Set("Content-Type", ct)
	w, env := s.serve(t, req, s.token(t, owner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var kept writeDTO
	require.NoError(t, json.Unmarshal(env.Data, &kept))
	assert.Equal(t, post.Image, kept.Image)

	body, ct = multipartPost(t, fields, "new.png")
	req = httptest.NewRequest(http.MethodPut, path, body)
	req.Header.Set("Content-Type", ct)
	w, env = s.serve(t, req, s.token(t, owner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var replaced writeDTO
	require.NoError(t, json.Unmarshal(env.Data, &replaced))
	assert.True(t, strings.HasPrefix(replaced.Image, "image/"))
	assert.FileExists(t, filepath.Join(s.mediaDir, replaced.Image))
}

type writeDTO struct {
	User   uint   `json:"user"`
	Image  string `json:"image"`
	Status string `json:"status"`
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
