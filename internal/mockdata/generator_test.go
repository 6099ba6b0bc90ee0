package mockdata

import (
	"context"
	"strings"
	"testing"

	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/UkralStul/social-feed/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Seed(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	require.NoError(t, NewGenerator(42).Seed(ctx, store, DefaultCounts))

	users, err := store.ListUsers(ctx, storage.PageArgs{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, DefaultCounts.Users, users.Total)

	posts, err := store.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, DefaultCounts.Posts, posts.Total)

	comments, err := store.ListComments(ctx, storage.CommentFilter{}, storage.PageArgs{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, DefaultCounts.Comments, comments.Total)

	userIDs := make(map[string]bool)
	for _, u := range users.Data {
		userIDs[u.ID] = true
		assert.True(t, strings.HasSuffix(u.Email, "@example.com"))
		require.NotNil(t, u.Location)
	}

	for _, p := range posts.Data {
		assert.True(t, userIDs[p.OwnerID], "post owner must be a seeded user")
		assert.NotEmpty(t, p.Tags)
		assert.LessOrEqual(t, len(p.Tags), 2)
		assert.GreaterOrEqual(t, p.Likes, 0)
		assert.LessOrEqual(t, p.Likes, DefaultCounts.Users)
		assert.GreaterOrEqual(t, p.PublishDate.Year(), 2020)
		assert.LessOrEqual(t, p.PublishDate.Year(), 2025)
	}

	tags, err := store.Tags(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tags)
	assert.LessOrEqual(t, len(tags), tagPoolSize)
}

func TestGenerator_LikeCountsMatchRecords(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()
	require.NoError(t, NewGenerator(7).Seed(ctx, store, Counts{Users: 4, Posts: 3}))

	users, err := store.ListUsers(ctx, storage.PageArgs{})
	require.NoError(t, err)
	posts, err := store.FindPosts(ctx, storage.PostFilter{})
	require.NoError(t, err)

	for _, p := range posts {
		count := 0
		for _, u := range users.Data {
			liked, err := store.HasLiked(ctx, p.ID, u.ID)
			require.NoError(t, err)
			if liked {
				count++
			}
		}
		assert.Equal(t, count, p.Likes)
	}
}

func TestGenerator_EmptyCounts(t *testing.T) {
	store := inmemory.New()
	require.NoError(t, NewGenerator(1).Seed(context.Background(), store, Counts{Posts: 5, Comments: 5}))

	posts, err := store.FindPosts(context.Background(), storage.PostFilter{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestGenerator_NextPost(t *testing.T) {
	g := NewGenerator(3)

	first := g.NextPost("user-1")
	second := g.NextPost("user-2")

	assert.Equal(t, "user-1", first.Owner)
	assert.Equal(t, "Live post number 1", first.Text)
	assert.Equal(t, "Live post number 2", second.Text)
	assert.NotEmpty(t, first.Tags)
	require.NotNil(t, first.Image)
}
