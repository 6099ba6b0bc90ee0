// Package feed связывает мутации хранилища с шиной событий.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/metrics"
	"github.com/UkralStul/social-feed/internal/pubsub"
	"github.com/UkralStul/social-feed/internal/storage"
)

// Топики шины событий.
const (
	TopicUserCreated    = "USER_CREATED"
	TopicUserUpdated    = "USER_UPDATED"
	TopicUserDeleted    = "USER_DELETED"
	TopicPostCreated    = "POST_CREATED"
	TopicPostUpdated    = "POST_UPDATED"
	TopicPostDeleted    = "POST_DELETED"
	TopicPostLiked      = "POST_LIKED"
	TopicCommentCreated = "COMMENT_CREATED"
	TopicCommentDeleted = "COMMENT_DELETED"
)

// Service выполняет мутации и публикует соответствующие события.
// Мутации сериализованы: порядок событий совпадает с порядком изменений в хранилище.
type Service struct {
	store storage.Storage
	bus   *pubsub.Bus
	mu    sync.Mutex
}

// NewService - конструктор сервиса.
func NewService(store storage.Storage, bus *pubsub.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// === User Mutations ===

func (s *Service) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.store.CreateUser(ctx, &domain.User{
		Title:       input.Title,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Gender:      input.Gender,
		Email:       input.Email,
		DateOfBirth: input.DateOfBirth,
		Phone:       input.Phone,
		Picture:     input.Picture,
		Location:    input.Location.ToLocation(),
	})
	observe("createUser", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicUserCreated, user)
	return user, nil
}

// UpdateUser молча отбрасывает email из входа.
func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.Email = nil
	user, err := s.store.UpdateUser(ctx, id, patch)
	observe("updateUser", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicUserUpdated, user)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.DeleteUser(ctx, id)
	observe("deleteUser", err)
	if err != nil {
		return "", err
	}
	s.bus.Publish(TopicUserDeleted, id)
	return id, nil
}

// === Post Mutations ===

func (s *Service) CreatePost(ctx context.Context, input domain.NewPost) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, err := s.store.CreatePost(ctx, &domain.Post{
		Text:    input.Text,
		Image:   input.Image,
		Link:    input.Link,
		Tags:    input.Tags,
		OwnerID: input.Owner,
	})
	observe("createPost", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicPostCreated, post)
	return post, nil
}

// UpdatePost молча отбрасывает owner из входа.
func (s *Service) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch.Owner = nil
	post, err := s.store.UpdatePost(ctx, id, patch)
	observe("updatePost", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicPostUpdated, post)
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.DeletePost(ctx, id)
	observe("deletePost", err)
	if err != nil {
		return "", err
	}
	s.bus.Publish(TopicPostDeleted, id)
	return id, nil
}

// LikePost переключает лайк: повторный вызов с теми же аргументами снимает его.
func (s *Service) LikePost(ctx context.Context, postID, userID string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, _, err := s.store.ToggleLike(ctx, postID, userID)
	observe("likePost", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicPostLiked, post)
	return post, nil
}

// === Comment Mutations ===

func (s *Service) CreateComment(ctx context.Context, input domain.NewComment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, err := s.store.CreateComment(ctx, &domain.Comment{
		Message: input.Message,
		OwnerID: input.Owner,
		PostID:  input.Post,
	})
	observe("createComment", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(TopicCommentCreated, comment)
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.DeleteComment(ctx, id)
	observe("deleteComment", err)
	if err != nil {
		return "", err
	}
	s.bus.Publish(TopicCommentDeleted, id)
	return id, nil
}

func observe(operation string, err error) {
	status := "ok"
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.MutationsTotal.WithLabelValues(operation, status).Inc()
}
