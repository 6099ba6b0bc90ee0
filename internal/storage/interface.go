package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/social-feed/internal/domain"
)

// ErrNotFound - цель обновления или удаления отсутствует.
var ErrNotFound = errors.New("not found")

// PostFilter - фильтр выборки постов. Пустые поля не фильтруют.
type PostFilter struct {
	OwnerID string
	Tag     string
}

// CommentFilter - фильтр выборки комментариев.
type CommentFilter struct {
	PostID  string
	OwnerID string
}

// Storage определяет контракт для хранилищ.
type Storage interface {
	// Reset очищает хранилище. Вызывается один раз при старте перед заполнением.
	Reset(ctx context.Context) error

	ListUsers(ctx context.Context, args PageArgs) (*domain.UserPage, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// DeleteUser удаляет пользователя, его посты (вместе с их комментариями) и его комментарии.
	DeleteUser(ctx context.Context, id string) error
	RandomUserID(ctx context.Context) (string, error)

	ListPosts(ctx context.Context, filter PostFilter, args PageArgs) (*domain.PostPage, error)
	FindPosts(ctx context.Context, filter PostFilter) ([]*domain.Post, error)
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)
	// DeletePost удаляет пост и его комментарии.
	DeletePost(ctx context.Context, id string) error

	// ToggleLike ставит или снимает лайк. liked сообщает итоговое состояние.
	ToggleLike(ctx context.Context, postID, userID string) (post *domain.Post, liked bool, err error)
	HasLiked(ctx context.Context, postID, userID string) (bool, error)

	ListComments(ctx context.Context, filter CommentFilter, args PageArgs) (*domain.CommentPage, error)
	FindComments(ctx context.Context, filter CommentFilter) ([]*domain.Comment, error)
	CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	Tags(ctx context.Context) ([]string, error)

	// Методы для Dataloader'ов
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	GetPostsByIDs(ctx context.Context, ids []string) (map[string]*domain.Post, error)
	GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error)
}
