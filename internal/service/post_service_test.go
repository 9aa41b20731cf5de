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

func TestListPostsByCategoryCountsAllStatuses(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewPostService(repos)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	tech := testutil.MustCategory(t, db, "Tech")
	for _, title := range []string{"one", "two", "three"} {
		testutil.MustPost(t, db, owner, tech, title, model.PostStatusActive)
	}
	testutil.MustPost(t, db, owner, tech, "draft", model.PostStatusDraft)

	list, err := svc.ListPostsByCategory(ctx, "tech")
	require.NoError(t, err)
	require.Len(t, list.Posts, 3)
	assert.Equal(t, "three", list.Posts[0].Title)
	assert.Equal(t, int64(4), list.Posts[0].Category.PostCount)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	var found bool
	for _, c := range categories {
		if c.Slug == "tech" {
			found = true
			assert.Equal(t, int64(4), c.PostCount)
		}
	}
	assert.True(t, found)

	_, err = svc.ListPostsByCategory(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, "Category not found.", err.Error())
}

func TestGetPostBySlugIncrementsViews(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewPostService(repos)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	cat := testutil.MustCategory(t, db, "Go")
	post := testutil.MustPost(t, db, owner, cat, "hello", model.PostStatusActive)
	draft := testutil.MustPost(t, db, owner, cat, "hidden", model.PostStatusDraft)

	for i := 1; i <= 3; i++ {
		got, err := svc.GetPostBySlug(ctx, post.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.Post.Views)
	}

	stored, err := repos.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Views)

	_, err = svc.GetPostBySlug(ctx, draft.Slug)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestListPostsIncludesLikes(t *testing.T) {
	db, repos := setup(t)
	svc := service.NewPostService(repos)
	ctx := context.Background()

	owner := testutil.MustUser(t, db, "owner@example.com")
	reader := testutil.MustUser(t, db, "reader@example.com")
	post := testutil.MustPost(t, db, owner, testutil.MustCategory(t, db, "Go"), "hello", model.PostStatusActive)
	_, err := repos.Posts.AddLike(ctx, post.ID, reader.ID)
	require.NoError(t, err)

	list, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, []uint{reader.ID}, list.Likes[post.ID])
}
