package feed

import (
	"context"
	"testing"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/pubsub"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/UkralStul/social-feed/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *inmemory.Store, *pubsub.Bus) {
	t.Helper()
	store := inmemory.New()
	bus := pubsub.New()
	return NewService(store, bus), store, bus
}

func newTestUser(t *testing.T, svc *Service) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.NewUser{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
	})
	require.NoError(t, err)
	return user
}

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func silent[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected event: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func strPtr(s string) *string { return &s }

func TestService_PostCreatedDelivered(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	user := newTestUser(t, svc)

	created := svc.PostCreated(ctx)
	post, err := svc.CreatePost(ctx, domain.NewPost{Text: "hello", Owner: user.ID, Tags: []string{"a", "b"}})
	require.NoError(t, err)

	got := next(t, created)
	assert.Equal(t, post.ID, got.ID)
	silent(t, created)
}

func TestService_UserEvents(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created := svc.UserCreated(ctx)
	updated := svc.UserUpdated(ctx)
	deleted := svc.UserDeleted(ctx)

	user := newTestUser(t, svc)
	assert.Equal(t, user.ID, next(t, created).ID)

	_, err := svc.UpdateUser(ctx, user.ID, domain.UserPatch{LastName: strPtr("Smith")})
	require.NoError(t, err)
	assert.Equal(t, "Smith", next(t, updated).LastName)

	id, err := svc.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, user.ID, next(t, deleted))
}

func TestService_UpdateUserDropsEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc)

	updated, err := svc.UpdateUser(ctx, user.ID, domain.UserPatch{
		FirstName: strPtr("Jack"),
		Email:     strPtr("hijack@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jack", updated.FirstName)
	assert.Equal(t, "john@example.com", updated.Email)
}

func TestService_UpdatePostDropsOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := newTestUser(t, svc)

	post, err := svc.CreatePost(ctx, domain.NewPost{Text: "mine", Owner: user.ID})
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, post.ID, domain.PostPatch{
		Text:  strPtr("still mine"),
		Owner: strPtr("thief"),
	})
	require.NoError(t, err)
	assert.Equal(t, "still mine", updated.Text)
	assert.Equal(t, user.ID, updated.OwnerID)
}

func TestService_NotFound(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := bus.Subscribe(ctx, TopicPostUpdated)

	_, err := svc.UpdateUser(ctx, "missing", domain.UserPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.DeleteUser(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.UpdatePost(ctx, "missing", domain.PostPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.DeletePost(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.LikePost(ctx, "missing", "user")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.DeleteComment(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Неудачная мутация ничего не публикует
	silent(t, events)
}

func TestService_LikePostToggles(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	user := newTestUser(t, svc)

	post, err := svc.CreatePost(ctx, domain.NewPost{Text: "like me", Owner: user.ID})
	require.NoError(t, err)
	liked := svc.PostLiked(ctx)

	first, err := svc.LikePost(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Likes)
	assert.Equal(t, 1, next(t, liked).Likes)

	second, err := svc.LikePost(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Likes, second.Likes)
	assert.Equal(t, 0, next(t, liked).Likes)

	has, err := store.HasLiked(ctx, post.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestService_CommentCreatedFilteredByPost(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	user := newTestUser(t, svc)

	postX, err := svc.CreatePost(ctx, domain.NewPost{Text: "x", Owner: user.ID})
	require.NoError(t, err)
	postY, err := svc.CreatePost(ctx, domain.NewPost{Text: "y", Owner: user.ID})
	require.NoError(t, err)

	onlyX := svc.CommentCreated(ctx, &postX.ID)
	all := svc.CommentCreated(ctx, nil)

	var created []*domain.Comment
	for _, target := range []string{postY.ID, postX.ID, postY.ID, postX.ID} {
		c, err := svc.CreateComment(ctx, domain.NewComment{Message: "m", Owner: user.ID, Post: target})
		require.NoError(t, err)
		created = append(created, c)
	}

	for _, want := range []*domain.Comment{created[1], created[3]} {
		got := next(t, onlyX)
		assert.Equal(t, postX.ID, got.PostID)
		assert.Equal(t, want.ID, got.ID)
	}
	silent(t, onlyX)

	for _, want := range created {
		assert.Equal(t, want.ID, next(t, all).ID)
	}
}

func TestService_CommentCreatedCancelReleasesListener(t *testing.T) {
	svc, _, bus := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	postID := "post-1"
	stream := svc.CommentCreated(ctx, &postID)
	require.Equal(t, 1, bus.NumSubscribers(TopicCommentCreated))

	cancel()
	assert.Eventually(t, func() bool {
		return bus.NumSubscribers(TopicCommentCreated) == 0
	}, time.Second, 5*time.Millisecond)

	_, ok := <-stream
	assert.False(t, ok)
}

func TestService_DeleteEventsCarryIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	user := newTestUser(t, svc)

	post, err := svc.CreatePost(ctx, domain.NewPost{Text: "bye", Owner: user.ID})
	require.NoError(t, err)
	comment, err := svc.CreateComment(ctx, domain.NewComment{Message: "m", Owner: user.ID, Post: post.ID})
	require.NoError(t, err)

	postDeleted := svc.PostDeleted(ctx)
	commentDeleted := svc.CommentDeleted(ctx)

	_, err = svc.DeleteComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, next(t, commentDeleted))

	_, err = svc.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, next(t, postDeleted))
}

func TestService_PostUpdatedAddsTags(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	user := newTestUser(t, svc)

	_, err := svc.CreatePost(ctx, domain.NewPost{Text: "a", Owner: user.ID, Tags: []string{"a"}})
	require.NoError(t, err)
	post, err := svc.CreatePost(ctx, domain.NewPost{Text: "b", Owner: user.ID, Tags: []string{"a", "b"}})
	require.NoError(t, err)

	updatedCh := svc.PostUpdated(ctx)
	_, err = svc.UpdatePost(ctx, post.ID, domain.PostPatch{Tags: []string{"c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, next(t, updatedCh).Tags)

	tags, err := store.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags)
}

type fixedSource struct{}

func (fixedSource) NextPost(ownerID string) domain.NewPost {
	return domain.NewPost{Text: "generated", Owner: ownerID, Tags: []string{"auto"}}
}

func TestService_GeneratePost(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := svc.GeneratePost(ctx, fixedSource{})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	user := newTestUser(t, svc)
	created := svc.PostCreated(ctx)

	post, err := svc.GeneratePost(ctx, fixedSource{})
	require.NoError(t, err)
	assert.Equal(t, user.ID, post.OwnerID)
	assert.Equal(t, post.ID, next(t, created).ID)
}

func TestService_RunPostTicker(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	newTestUser(t, svc)

	created := svc.PostCreated(ctx)
	done := make(chan struct{})
	go func() {
		svc.RunPostTicker(ctx, 10*time.Millisecond, fixedSource{})
		close(done)
	}()

	assert.Equal(t, "generated", next(t, created).Text)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop after cancel")
	}
}

func TestService_RunPostTickerDisabled(t *testing.T) {
	svc, _, _ := newTestService(t)
	// interval == 0 возвращается сразу
	svc.RunPostTicker(context.Background(), 0, fixedSource{})
}
