package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore создает хранилище с одним пользователем и одним постом
func newTestStore(t *testing.T) (*Store, *domain.User, *domain.Post) {
	t.Helper()
	store := New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, &domain.User{FirstName: "John", LastName: "Doe", Email: "john@example.com"})
	require.NoError(t, err)

	post, err := store.CreatePost(ctx, &domain.Post{Text: "Test Post", OwnerID: user.ID, Tags: []string{"go"}})
	require.NoError(t, err)
	return store, user, post
}

func strPtr(s string) *string { return &s }

func TestStore_CreateAndGetPost(t *testing.T) {
	store, _, post := newTestStore(t)
	ctx := context.Background()

	retrieved, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Text, retrieved.Text)
	assert.Equal(t, 0, retrieved.Likes)
	assert.False(t, retrieved.PublishDate.IsZero())

	_, err = store.GetPostByID(ctx, "non-existent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, _, post := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	got.Text = "mutated"
	got.Tags[0] = "mutated"

	again, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Post", again.Text)
	assert.Equal(t, []string{"go"}, again.Tags)
}

func TestStore_Pagination(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Создаем 23 поста с возрастающей датой
	for i := 0; i < 23; i++ {
		_, err := store.CreatePost(ctx, &domain.Post{
			Text:        fmt.Sprintf("post %d", i),
			OwnerID:     "user-1",
			PublishDate: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 10},
		{2, 10, 10},
		{3, 10, 3},
		{4, 10, 0},
		{1, 50, 23},
		{23, 1, 1},
		{24, 1, 0},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("page=%d,limit=%d", tc.page, tc.limit), func(t *testing.T) {
			page, err := store.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Page: tc.page, Limit: tc.limit})
			require.NoError(t, err)
			assert.Len(t, page.Data, tc.want)
			assert.Equal(t, 23, page.Total)
			assert.Equal(t, tc.page, page.Page)
			assert.Equal(t, tc.limit, page.Limit)
		})
	}
}

func TestStore_PaginationDefaults(t *testing.T) {
	store, _, _ := newTestStore(t)

	page, err := store.ListUsers(context.Background(), storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultPage, page.Page)
	assert.Equal(t, storage.DefaultLimit, page.Limit)
	assert.Len(t, page.Data, 1)
}

func TestStore_SortPostsAscending(t *testing.T) {
	store := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, offset := range []int{5, 1, 4, 2, 3, 0} {
		_, err := store.CreatePost(ctx, &domain.Post{
			Text:        fmt.Sprintf("post %d", offset),
			OwnerID:     "user-1",
			PublishDate: base.Add(time.Duration(offset) * time.Minute),
		})
		require.NoError(t, err)
	}

	var dates []time.Time
	for p := 1; p <= 3; p++ {
		page, err := store.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Page: p, Limit: 2})
		require.NoError(t, err)
		for _, post := range page.Data {
			dates = append(dates, post.PublishDate)
		}
	}
	require.Len(t, dates, 6)
	for i := 1; i < len(dates); i++ {
		assert.False(t, dates[i].Before(dates[i-1]), "dates must be non-decreasing")
	}

	byText, err := store.ListPosts(ctx, storage.PostFilter{}, storage.PageArgs{Limit: 10, SortBy: "text"})
	require.NoError(t, err)
	assert.Equal(t, "post 0", byText.Data[0].Text)
	assert.Equal(t, "post 5", byText.Data[5].Text)
}

func TestStore_UnknownSortKeepsInsertionOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	for _, name := range []string{"Zed", "Amy", "Kim"} {
		_, err := store.CreateUser(ctx, &domain.User{FirstName: name, LastName: "X", Email: name + "@example.com"})
		require.NoError(t, err)
	}

	page, err := store.ListUsers(ctx, storage.PageArgs{SortBy: "noSuchField"})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Zed", page.Data[0].FirstName)
	assert.Equal(t, "Amy", page.Data[1].FirstName)
	assert.Equal(t, "Kim", page.Data[2].FirstName)

	sorted, err := store.ListUsers(ctx, storage.PageArgs{SortBy: "firstName"})
	require.NoError(t, err)
	assert.Equal(t, "Amy", sorted.Data[0].FirstName)
}

func TestStore_FilterPosts(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreatePost(ctx, &domain.Post{Text: "other", OwnerID: "someone-else", Tags: []string{"rust"}})
	require.NoError(t, err)

	byUser, err := store.ListPosts(ctx, storage.PostFilter{OwnerID: user.ID}, storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, 1, byUser.Total)
	assert.Equal(t, post.ID, byUser.Data[0].ID)

	byTag, err := store.ListPosts(ctx, storage.PostFilter{Tag: "rust"}, storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, 1, byTag.Total)
	assert.Equal(t, "other", byTag.Data[0].Text)
}

func TestStore_TagsDeduplicated(t *testing.T) {
	store, user, _ := newTestStore(t)
	ctx := context.Background()

	post, err := store.CreatePost(ctx, &domain.Post{Text: "tags", OwnerID: user.ID, Tags: []string{"a", "b", "a", "go"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "go"}, post.Tags)

	tags, err := store.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "a", "b"}, tags)

	_, err = store.UpdatePost(ctx, post.ID, domain.PostPatch{Tags: []string{"b", "c"}})
	require.NoError(t, err)

	tags, err = store.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "a", "b", "c"}, tags)
}

func TestStore_UpdateUserMerge(t *testing.T) {
	store, user, _ := newTestStore(t)
	ctx := context.Background()

	updated, err := store.UpdateUser(ctx, user.ID, domain.UserPatch{
		FirstName: strPtr("Johnny"),
		Location:  &domain.LocationInput{City: strPtr("Berlin")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "john@example.com", updated.Email)
	require.NotNil(t, updated.Location)
	assert.Equal(t, "Berlin", *updated.Location.City)

	_, err = store.UpdateUser(ctx, "missing", domain.UserPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ToggleLike(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	liked, isLiked, err := store.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)
	assert.Equal(t, 1, liked.Likes)

	has, err := store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, has)

	// Повторный вызов снимает лайк
	unliked, isLiked, err := store.ToggleLike(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, isLiked)
	assert.Equal(t, 0, unliked.Likes)

	has, err = store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, has)

	_, _, err = store.ToggleLike(ctx, "missing", user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_DeleteUserCascades(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	other, err := store.CreateUser(ctx, &domain.User{FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"})
	require.NoError(t, err)
	otherPost, err := store.CreatePost(ctx, &domain.Post{Text: "kept", OwnerID: other.ID})
	require.NoError(t, err)

	_, err = store.CreateComment(ctx, &domain.Comment{Message: "own comment elsewhere", OwnerID: user.ID, PostID: otherPost.ID})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, &domain.Comment{Message: "on deleted post", OwnerID: other.ID, PostID: post.ID})
	require.NoError(t, err)
	kept, err := store.CreateComment(ctx, &domain.Comment{Message: "kept", OwnerID: other.ID, PostID: otherPost.ID})
	require.NoError(t, err)
	_, _, err = store.ToggleLike(ctx, otherPost.ID, user.ID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteUser(ctx, user.ID))

	_, err = store.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	posts, err := store.FindPosts(ctx, storage.PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, otherPost.ID, posts[0].ID)

	comments, err := store.FindComments(ctx, storage.CommentFilter{})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, kept.ID, comments[0].ID)

	// Лайки удаленного пользователя не удаляются
	has, err := store.HasLiked(ctx, otherPost.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, has)

	assert.ErrorIs(t, store.DeleteUser(ctx, user.ID), storage.ErrNotFound)
}

func TestStore_DeletePostCascades(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateComment(ctx, &domain.Comment{Message: "bye", OwnerID: user.ID, PostID: post.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeletePost(ctx, post.ID))

	comments, err := store.ListComments(ctx, storage.CommentFilter{PostID: post.ID}, storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, 0, comments.Total)
	assert.Empty(t, comments.Data)

	assert.ErrorIs(t, store.DeletePost(ctx, post.ID), storage.ErrNotFound)
}

func TestStore_CommentsByPostAndUser(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.CreateComment(ctx, &domain.Comment{Message: fmt.Sprintf("c%d", i), OwnerID: user.ID, PostID: post.ID})
		require.NoError(t, err)
	}
	_, err := store.CreateComment(ctx, &domain.Comment{Message: "foreign", OwnerID: "other", PostID: "other-post"})
	require.NoError(t, err)

	byPost, err := store.ListComments(ctx, storage.CommentFilter{PostID: post.ID}, storage.PageArgs{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, byPost.Total)
	assert.Len(t, byPost.Data, 2)

	byUser, err := store.ListComments(ctx, storage.CommentFilter{OwnerID: "other"}, storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, 1, byUser.Total)

	grouped, err := store.GetCommentsByPostIDs(ctx, []string{post.ID, "empty"})
	require.NoError(t, err)
	assert.Len(t, grouped[post.ID], 3)
	assert.NotNil(t, grouped["empty"])
	assert.Empty(t, grouped["empty"])
}

func TestStore_DeleteComment(t *testing.T) {
	store, user, post := newTestStore(t)
	ctx := context.Background()

	c, err := store.CreateComment(ctx, &domain.Comment{Message: "x", OwnerID: user.ID, PostID: post.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteComment(ctx, c.ID))
	assert.ErrorIs(t, store.DeleteComment(ctx, c.ID), storage.ErrNotFound)
}

func TestStore_Reset(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx))

	users, err := store.ListUsers(ctx, storage.PageArgs{})
	require.NoError(t, err)
	assert.Equal(t, 0, users.Total)

	tags, err := store.Tags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = store.RandomUserID(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
