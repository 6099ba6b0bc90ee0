package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func columnNames(ob clause.OrderBy) []string {
	names := make([]string, 0, len(ob.Columns))
	for _, c := range ob.Columns {
		names = append(names, c.Column.Name)
	}
	return names
}

func TestOrderBy(t *testing.T) {
	ob := orderBy(storage.PostSortColumns, "likes", "publish_date")
	assert.Equal(t, []string{"likes", "publish_date", "id"}, columnNames(ob))

	// неизвестное поле не попадает в SQL
	ob = orderBy(storage.PostSortColumns, "text; DROP TABLE posts", "publish_date")
	assert.Equal(t, []string{"publish_date", "id"}, columnNames(ob))

	ob = orderBy(storage.PostSortColumns, "publishDate", "publish_date")
	assert.Equal(t, []string{"publish_date", "id"}, columnNames(ob))
}

// newTestStore подключается к FEED_TEST_DB_DSN; без него тесты пропускаются.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("FEED_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("FEED_TEST_DB_DSN is not set")
	}
	store, err := New(dsn)
	require.NoError(t, err)
	require.NoError(t, store.Reset(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PostLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, &domain.User{FirstName: "John", LastName: "Doe", Email: "john@example.com"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{Text: "hello", OwnerID: user.ID, Tags: []string{"go", "go", "sql"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, post.Tags)

	page, err := store.ListPosts(ctx, storage.PostFilter{Tag: "sql"}, storage.PageArgs{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, post.ID, page.Data[0].ID)

	liked, ok, err := store.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, liked.Likes)
	has, err := store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, has)

	tags, err := store.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, tags)

	_, err = store.CreateComment(ctx, &domain.Comment{Message: "hi", OwnerID: user.ID, PostID: post.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = store.GetPostByID(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	comments, err := store.FindComments(ctx, storage.CommentFilter{PostID: post.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, store.DeleteUser(ctx, user.ID), storage.ErrNotFound)
}
