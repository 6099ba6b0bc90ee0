package feed

import (
	"context"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/pubsub"
)

// Все потоки закрываются после отмены ctx.

func (s *Service) UserCreated(ctx context.Context) <-chan *domain.User {
	return pubsub.Stream[*domain.User](ctx, s.bus, TopicUserCreated)
}

func (s *Service) UserUpdated(ctx context.Context) <-chan *domain.User {
	return pubsub.Stream[*domain.User](ctx, s.bus, TopicUserUpdated)
}

func (s *Service) UserDeleted(ctx context.Context) <-chan string {
	return pubsub.Stream[string](ctx, s.bus, TopicUserDeleted)
}

func (s *Service) PostCreated(ctx context.Context) <-chan *domain.Post {
	return pubsub.Stream[*domain.Post](ctx, s.bus, TopicPostCreated)
}

func (s *Service) PostUpdated(ctx context.Context) <-chan *domain.Post {
	return pubsub.Stream[*domain.Post](ctx, s.bus, TopicPostUpdated)
}

func (s *Service) PostDeleted(ctx context.Context) <-chan string {
	return pubsub.Stream[string](ctx, s.bus, TopicPostDeleted)
}

func (s *Service) PostLiked(ctx context.Context) <-chan *domain.Post {
	return pubsub.Stream[*domain.Post](ctx, s.bus, TopicPostLiked)
}

// CommentCreated без postID отдает все новые комментарии,
// с postID - только комментарии к этому посту.
func (s *Service) CommentCreated(ctx context.Context, postID *string) <-chan *domain.Comment {
	stream := pubsub.Stream[*domain.Comment](ctx, s.bus, TopicCommentCreated)
	if postID == nil {
		return stream
	}
	want := *postID
	return pubsub.Filter(ctx, stream, func(c *domain.Comment) bool {
		return c.PostID == want
	})
}

func (s *Service) CommentDeleted(ctx context.Context) <-chan string {
	return pubsub.Stream[string](ctx, s.bus, TopicCommentDeleted)
}
