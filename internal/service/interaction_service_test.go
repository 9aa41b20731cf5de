package service_test

import (
	"context"
	"testing"

	"blog-backend/internal/model"
	"blog-backend/internal/service"
	"blog-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeIsInvolution(t *testing.T) {
	db, repos := setup(t)
	pusher := &recordingPusher{}
	svc := service.NewInteractionService(repos, pusher)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	reader := testutil.MustUser(t, db, "reader@example.com")
	post := testutil.MustPost(t, db, owner, testutil.MustCategory(t, db, "Go"), "hello", model.PostStatusActive)

	res, err := svc.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, model.NotificationLike))
	assert.Equal(t, 1, pusher.count())

	res, err = svc.ToggleLike(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, int64(0), res.Count)
	assert.Zero(t, countNotifications(t, db, owner.ID, model.NotificationLike))
	assert.Equal(t, 1, pusher.count())
}

func TestSelfLikeNeverNotifies(t *testing.T) {
	db, repos := setup(t)
	pusher := &recordingPusher{}
	svc := service.NewInteractionService(repos, pusher)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	post := testutil.MustPost(t, db, owner, testutil.MustCategory(t, db, "Go"), "mine", model.PostStatusActive)

	for i := 0; i < 3; i++ {
		res, err := svc.ToggleLike(ctx, owner.ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 0, res.Active)
		assert.Zero(t, countNotifications(t, db, owner.ID, model.NotificationLike))
	}
	assert.Zero(t, pusher.count())
}

func TestToggleLikeMissingPost(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewInteractionService(repos, nil)
	reader := testutil.MustUser(t, db, "reader@example.com")

	_, err := svc.ToggleLike(context.Background(), reader.ID, 999)
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	assert.Equal(t, "Post not found.", err.Error())
}

func TestToggleBookmark(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewInteractionService(repos, nil)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	reader := testutil.MustUser(t, db, "reader@example.com")
	post := testutil.MustPost(t, db, owner, testutil.MustCategory(t, db, "Go"), "hello", model.PostStatusActive)

	res, err := svc.ToggleBookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(1), countNotifications(t, db, owner.ID, model.NotificationBookmark))

	res, err = svc.ToggleBookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Zero(t, res.Count)
	assert.Zero(t, countNotifications(t, db, owner.ID, model.NotificationBookmark))
}

func TestAddCommentAlwaysNotifiesOwner(t *testing.T) {
	db, repos := setup(t)
	pusher := &recordingPusher{}
	svc := service.NewInteractionService(repos, pusher)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	post := testutil.MustPost(t, db, owner, testutil.MustCategory(t, db, "Go"), "hello", model.PostStatusActive)

	anon, err := svc.AddComment(ctx, service.CommentInput{PostID: post.ID, Name: "Guest", Email: "guest@example.com", Comment: "nice"})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	own, err := svc.AddComment(ctx, service.CommentInput{PostID: post.ID, UserID: owner.ID, Name: "Owner", Email: "owner@example.com", Comment: "thanks"})
	require.NoError(t, err)
	require.NotNil(t, own.UserID)
	assert.Equal(t, owner.ID, *own.UserID)

	var list []model.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", owner.ID, model.NotificationComment).Order("id").Find(&list).Error)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].ActorID)
	require.NotNil(t, list[1].ActorID)
	assert.Equal(t, owner.ID, *list[1].ActorID)
	assert.Equal(t, 2, pusher.count())

	_, err = svc.AddComment(ctx, service.CommentInput{PostID: post.ID, Name: "Guest"})
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	_, err = svc.AddComment(ctx, service.CommentInput{PostID: 999, Name: "g", Email: "g@x.test", Comment: "c"})
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}
