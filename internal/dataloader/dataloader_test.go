package dataloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage/inmemory"
	"github.com/graph-gophers/dataloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore считает пакетные запросы к пользователям
type countingStore struct {
	*inmemory.Store
	userBatches atomic.Int32
}

func (s *countingStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.userBatches.Add(1)
	return s.Store.GetUsersByIDs(ctx, ids)
}

func TestLoaders_BatchesUsers(t *testing.T) {
	store := &countingStore{Store: inmemory.New()}
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		u, err := store.CreateUser(ctx, &domain.User{FirstName: name, LastName: name, Email: name + "@example.com"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	loaders := NewLoaders(store)
	thunks := make([]dataloader.Thunk, 0, len(ids)+1)
	for _, id := range append(ids, "missing") {
		thunks = append(thunks, loaders.UserByID.Load(ctx, dataloader.StringKey(id)))
	}
	for i, thunk := range thunks {
		data, err := thunk()
		require.NoError(t, err)
		user, _ := data.(*domain.User)
		if i < len(ids) {
			require.NotNil(t, user)
			assert.Equal(t, ids[i], user.ID)
		} else {
			assert.Nil(t, user)
		}
	}
	assert.Equal(t, int32(1), store.userBatches.Load())
}

func TestLoaders_TypedHelpers(t *testing.T) {
	store := inmemory.New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, &domain.User{FirstName: "x", LastName: "y", Email: "x@example.com"})
	require.NoError(t, err)
	post, err := store.CreatePost(ctx, &domain.Post{Text: "p", OwnerID: user.ID})
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, &domain.Comment{Message: "c", OwnerID: user.ID, PostID: post.ID})
	require.NoError(t, err)

	loaders := NewLoaders(store)

	gotUser, err := loaders.User(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)

	missing, err := loaders.User(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	gotPost, err := loaders.Post(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, gotPost.ID)

	comments, err := loaders.Comments(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	none, err := loaders.Comments(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMiddleware_InjectsLoaders(t *testing.T) {
	var got *Loaders
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = For(r.Context())
	})

	rec := httptest.NewRecorder()
	Middleware(inmemory.New(), next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", nil))

	assert.NotNil(t, got)
	assert.Nil(t, For(context.Background()))
}
