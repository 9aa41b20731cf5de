package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blog-backend/config"
	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/internal/testutil"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/mailer"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const strongPassword = "Tundra-Quartz-58"

type captureSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (c *captureSender) Send(_ context.Context, msg mailer.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

type failingSender struct{}

func (failingSender) Send(context.Context, mailer.Message) error {
	return errors.New("mailgun: 503 service unavailable")
}

type pushed struct {
	UserID uint
	Event  string
}

type recordingPusher struct {
	mu     sync.Mutex
	events []pushed
}

func (p *recordingPusher) Push(userID uint, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{UserID: userID, Event: event})
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newJWT(bl jwt.Blacklist) *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:     "service-test-secret",
		Issuer:     "blog-test",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 50 * 24 * time.Hour,
		ResetTTL:   time.Hour,
	}, bl)
}

func setup(t *testing.T) (*gorm.DB, *repository.Repositories) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, repository.New(db)
}

func countNotifications(t *testing.T, db *gorm.DB, userID uint, typ model.NotificationType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Notification{}).Where("user_id = ? AND type = ?", userID, typ).Count(&n).Error)
	return n
}
