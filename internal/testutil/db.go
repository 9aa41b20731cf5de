package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"blog-backend/config"
	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	dbPkg "blog-backend/pkg/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB 打开独立的内存 sqlite 库并完成迁移与兜底分类
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbSeq.Add(1))

	db, err := dbPkg.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	require.NoError(t, repository.NewCategoryRepository(db).EnsureDefault(context.Background()))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// MustUser 直接插入用户及资料（绕过注册流程的密码策略）
func MustUser(t testing.TB, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&model.Profile{UserID: u.ID, FullName: u.FullName}).Error)
	return u
}

// MustCategory 插入分类
func MustCategory(t testing.TB, db *gorm.DB, title string) *model.Category {
	t.Helper()
	c := &model.Category{Title: title}
	require.NoError(t, db.Create(c).Error)
	return c
}

// MustPost 插入文章
func MustPost(t testing.TB, db *gorm.DB, owner *model.User, category *model.Category, title string, status model.PostStatus) *model.Post {
	t.Helper()
	p := &model.Post{UserID: owner.ID, CategoryID: category.ID, Title: title, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}
