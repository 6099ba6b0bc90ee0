package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

const batchWait = time.Millisecond

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	UserByID         *dataloader.Loader
	PostByID         *dataloader.Loader
	CommentsByPostID *dataloader.Loader
}

// NewLoaders создает лоадеры поверх хранилища.
// Кэш отключен: websocket-соединение живет долго, а данные меняются мутациями.
func NewLoaders(store storage.Storage) *Loaders {
	return &Loaders{
		UserByID:         newLoader(store.GetUsersByIDs),
		PostByID:         newLoader(store.GetPostsByIDs),
		CommentsByPostID: newLoader(store.GetCommentsByPostIDs),
	}
}

// newLoader оборачивает пакетный метод хранилища в батч-функцию лоадера.
func newLoader[V any](fetch func(ctx context.Context, ids []string) (map[string]V, error)) *dataloader.Loader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		// Вызываем метод хранилища один раз на весь батч
		found, err := fetch(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: found[id]}
		}
		return results
	}
	return dataloader.NewBatchedLoader(batchFn,
		dataloader.WithWait(batchWait),
		dataloader.WithCache(&dataloader.NoCache{}),
	)
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.Storage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLoaders(r.Context(), NewLoaders(store))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLoaders кладет лоадеры в контекст.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// For извлекает лоадеры из контекста. Возвращает nil, если их нет.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// User загружает пользователя; nil, если пользователя нет.
func (l *Loaders) User(ctx context.Context, id string) (*domain.User, error) {
	return load[*domain.User](ctx, l.UserByID, id)
}

// Post загружает пост; nil, если поста нет.
func (l *Loaders) Post(ctx context.Context, id string) (*domain.Post, error) {
	return load[*domain.Post](ctx, l.PostByID, id)
}

// Comments загружает комментарии поста в порядке создания.
func (l *Loaders) Comments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	comments, err := load[[]*domain.Comment](ctx, l.CommentsByPostID, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}

func load[V any](ctx context.Context, loader *dataloader.Loader, id string) (V, error) {
	var zero V
	data, err := loader.Load(ctx, dataloader.StringKey(id))()
	if err != nil {
		return zero, err
	}
	v, ok := data.(V)
	if !ok {
		return zero, nil
	}
	return v, nil
}
