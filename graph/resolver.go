// graph/resolver.go

package graph

//go:generate go run github.com/99designs/gqlgen generate

import (
	"context"
	"errors"

	"github.com/UkralStul/social-feed/internal/dataloader"
	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/feed"
	"github.com/UkralStul/social-feed/internal/storage"
)

// This file will not be regenerated automatically.
//
// It serves as dependency injection for your app, add any dependencies you require here.

// Resolver - это корневая структура резолвера.
// Чтение идет напрямую в Storage, мутации и подписки - через Feed.
type Resolver struct {
	Storage storage.Storage
	Feed    *feed.Service
}

func pageArgs(page, limit *int, sortBy *string) storage.PageArgs {
	var args storage.PageArgs
	if page != nil {
		args.Page = *page
	}
	if limit != nil {
		args.Limit = *limit
	}
	if sortBy != nil {
		args.SortBy = *sortBy
	}
	return args
}

// notFoundAsNil превращает отсутствие записи в пустой результат без ошибки.
func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (r *Resolver) loadUser(ctx context.Context, id string) (*domain.User, error) {
	if loaders := dataloader.For(ctx); loaders != nil {
		return loaders.User(ctx, id)
	}
	return notFoundAsNil(r.Storage.GetUserByID(ctx, id))
}

func (r *Resolver) loadPost(ctx context.Context, id string) (*domain.Post, error) {
	if loaders := dataloader.For(ctx); loaders != nil {
		return loaders.Post(ctx, id)
	}
	return notFoundAsNil(r.Storage.GetPostByID(ctx, id))
}

func (r *Resolver) loadComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if loaders := dataloader.For(ctx); loaders != nil {
		return loaders.Comments(ctx, postID)
	}
	return r.Storage.FindComments(ctx, storage.CommentFilter{PostID: postID})
}
