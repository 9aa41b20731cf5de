package service_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"blog-backend/internal/model"
	"blog-backend/internal/service"
	redisPkg "blog-backend/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserWithOneProfile(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), &captureSender{}, "http://front.test/reset")
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{
		Email: "alice@example.com", FullName: "Alice Liddell",
		Password: strongPassword, Password2: strongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, strongPassword, user.PasswordHash)

	var profiles []model.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&profiles).Error)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice Liddell", profiles[0].FullName)
	assert.Equal(t, model.DefaultProfileImage, profiles[0].Image)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), &captureSender{}, "")
	ctx := context.Background()
	in := service.RegisterInput{Email: "dup@example.com", Password: strongPassword, Password2: strongPassword}

	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = svc.Register(ctx, in)
	require.ErrorIs(t, err, service.ErrEmailTaken)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), &captureSender{}, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{Email: "a@example.com", Password: strongPassword, Password2: "other"})
	require.Error(t, err)
	assert.Equal(t, "Password fields didn't match.", err.Error())

	_, err = svc.Register(ctx, service.RegisterInput{Email: "a@example.com", Password: "short", Password2: "short"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestRegisterUsernameCollisionGetsSuffix(t *testing.T) {
	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), &captureSender{}, "")
	ctx := context.Background()

	a, err := svc.Register(ctx, service.RegisterInput{Email: "sam@one.test", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)
	b, err := svc.Register(ctx, service.RegisterInput{Email: "sam@two.test", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	assert.Equal(t, "sam", a.Username)
	assert.NotEqual(t, a.Username, b.Username)
	assert.Contains(t, b.Username, "sam-")
}

func TestLoginAndRefreshRotation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, repos := setup(t)
	jwtSvc := newJWT(redisPkg.NewTokenBlacklist(rdb))
	svc := service.NewAuthService(repos, jwtSvc, &captureSender{}, "")
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{Email: "bob@example.com", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "wrong-password")
	assert.Equal(t, service.KindUnauthenticated, service.KindOf(err))

	pair, err := svc.Login(ctx, "bob@example.com", strongPassword)
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateToken(pair.Access, "access")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	rotated, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.Equal(t, service.KindUnauthenticated, service.KindOf(err))
}

func TestPasswordResetSucceedsOnce(t *testing.T) {
	_, repos := setup(t)
	sender := &captureSender{}
	svc := service.NewAuthService(repos, newJWT(nil), sender, "http://front.test/reset")
	ctx := context.Background()

	_, err := svc.RequestPasswordReset(ctx, "nobody@example.com")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	user, err := svc.Register(ctx, service.RegisterInput{Email: "carol@example.com", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	ticket, err := svc.RequestPasswordReset(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Len(t, ticket.OTP, service.OTPDigits)
	assert.Contains(t, ticket.Link, "http://front.test/reset?")
	assert.Contains(t, ticket.Link, "uidb64="+strconv.FormatUint(uint64(user.ID), 10))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "carol@example.com", sender.sent[0].To)
	assert.Equal(t, "Password Reset Request", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Text, ticket.OTP)

	in := service.ConfirmResetInput{
		UIDB64:     strconv.FormatUint(uint64(user.ID), 10),
		OTP:        ticket.OTP,
		ResetToken: ticket.ResetToken,
		Password:   "Granite-Violet-73",
	}
	wrong := in
	wrong.OTP = "0000000"
	err = svc.ConfirmPasswordReset(ctx, wrong)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	require.NoError(t, svc.ConfirmPasswordReset(ctx, in))

	err = svc.ConfirmPasswordReset(ctx, in)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.Login(ctx, "carol@example.com", "Granite-Violet-73")
	require.NoError(t, err)

	stored, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.OTP)
	assert.Empty(t, stored.ResetToken)
}

func TestRefreshConcurrentRotationSucceedsOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(redisPkg.NewTokenBlacklist(rdb)), &captureSender{}, "")
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{Email: "erin@example.com", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "erin@example.com", strongPassword)
	require.NoError(t, err)

	const workers = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		kinds []service.ErrorKind
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, pair.Refresh)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			kinds = append(kinds, service.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	require.Len(t, kinds, workers-1)
	for _, k := range kinds {
		assert.Equal(t, service.KindUnauthenticated, k)
	}
}

func TestRequestPasswordResetMailFailure(t *testing.T) {
	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), failingSender{}, "http://front.test/reset")
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{Email: "frank@example.com", Password: strongPassword, Password2: strongPassword})
	require.NoError(t, err)

	_, err = svc.RequestPasswordReset(ctx, "frank@example.com")
	require.Error(t, err)
	assert.Equal(t, service.KindInternal, service.KindOf(err))
}

func TestConfirmPasswordResetMissingFields(t *testing.T) {
	_, repos := setup(t)
	svc := service.NewAuthService(repos, newJWT(nil), &captureSender{}, "")

	err := svc.ConfirmPasswordReset(context.Background(), service.ConfirmResetInput{OTP: "1234567"})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields.", err.Error())
}
