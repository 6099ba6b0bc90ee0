package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/metrics"
)

// PostSource выдает вход для синтетического поста.
type PostSource interface {
	NextPost(ownerID string) domain.NewPost
}

// RunPostTicker создает синтетический пост каждые interval, пока не отменен ctx.
// interval <= 0 отключает генерацию.
func (s *Service) RunPostTicker(ctx context.Context, interval time.Duration, src PostSource) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			post, err := s.GeneratePost(ctx, src)
			if err != nil {
				log.Printf("post ticker: %v", err)
				continue
			}
			log.Printf("post ticker: published post %s", post.ID)
		}
	}
}

// GeneratePost создает один синтетический пост от случайного пользователя.
func (s *Service) GeneratePost(ctx context.Context, src PostSource) (*domain.Post, error) {
	ownerID, err := s.store.RandomUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick owner: %w", err)
	}
	post, err := s.CreatePost(ctx, src.NextPost(ownerID))
	if err != nil {
		return nil, err
	}
	metrics.GeneratedPostsTotal.Inc()
	return post, nil
}
