// Package mockdata заполняет хранилище псевдослучайными данными при старте.
package mockdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"
)

// Counts - сколько сущностей создать.
type Counts struct {
	Users    int
	Posts    int
	Comments int
}

// DefaultCounts - объем данных по умолчанию.
var DefaultCounts = Counts{Users: 10, Posts: 20, Comments: 50}

const (
	tagPoolSize = 5
	likeChance  = 0.3
)

// Generator создает сущности. Безопасен для одновременного использования.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	now   func() time.Time
	posts int
}

// NewGenerator - seed == 0 берет зерно из текущего времени.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Seed создает пользователей, посты, комментарии и случайные лайки.
func (g *Generator) Seed(ctx context.Context, store storage.Storage, counts Counts) error {
	userIDs := make([]string, 0, counts.Users)
	for i := 0; i < counts.Users; i++ {
		user, err := store.CreateUser(ctx, g.user(i))
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
		userIDs = append(userIDs, user.ID)
	}
	if len(userIDs) == 0 {
		return nil
	}

	postIDs := make([]string, 0, counts.Posts)
	for i := 0; i < counts.Posts; i++ {
		post, err := store.CreatePost(ctx, g.post(i, g.pick(userIDs)))
		if err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
		postIDs = append(postIDs, post.ID)
	}
	if len(postIDs) == 0 {
		return nil
	}

	for i := 0; i < counts.Comments; i++ {
		comment := &domain.Comment{
			Message:     fmt.Sprintf("This is comment number %d", i+1),
			OwnerID:     g.pick(userIDs),
			PostID:      g.pick(postIDs),
			PublishDate: g.randomDate(2020, 2025),
		}
		if _, err := store.CreateComment(ctx, comment); err != nil {
			return fmt.Errorf("seed comment %d: %w", i, err)
		}
	}

	for _, postID := range postIDs {
		for _, userID := range userIDs {
			if !g.chance(likeChance) {
				continue
			}
			if _, _, err := store.ToggleLike(ctx, postID, userID); err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
		}
	}
	return nil
}

// NextPost реализует feed.PostSource для фоновой генерации постов.
func (g *Generator) NextPost(ownerID string) domain.NewPost {
	g.mu.Lock()
	g.posts++
	n := g.posts
	tags := g.randomTags()
	g.mu.Unlock()

	image := fmt.Sprintf("https://picsum.photos/600/400?random=live%d", n)
	return domain.NewPost{
		Text:  fmt.Sprintf("Live post number %d", n),
		Image: &image,
		Tags:  tags,
		Owner: ownerID,
	}
}

func (g *Generator) user(i int) *domain.User {
	g.mu.Lock()
	defer g.mu.Unlock()

	male := i%2 == 0
	gender, title, first, last, folder := "female", "ms", "Jane", "Smith", "women"
	if male {
		gender, title, first, last, folder = "male", "mr", "John", "Doe", "men"
	}
	dob := g.randomDateLocked(1990, 2000)
	return &domain.User{
		Title:        &title,
		FirstName:    first,
		LastName:     last,
		Gender:       &gender,
		Email:        fmt.Sprintf("%s.doe%d@example.com", strings.ToLower(first), i),
		DateOfBirth:  &dob,
		RegisterDate: g.now(),
		Phone:        ptr(fmt.Sprintf("+1%d", g.rnd.IntN(1_000_000_000))),
		Picture:      ptr(fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", folder, i+1)),
		Location: &domain.Location{
			Street:   ptr(fmt.Sprintf("%d Main St", g.rnd.IntN(1000))),
			City:     ptr(fmt.Sprintf("City %d", i)),
			State:    ptr(fmt.Sprintf("State %d", i)),
			Country:  ptr("USA"),
			Timezone: ptr(fmt.Sprintf("+%d:00", g.rnd.IntN(12))),
		},
	}
}

func (g *Generator) post(i int, ownerID string) *domain.Post {
	g.mu.Lock()
	defer g.mu.Unlock()

	return &domain.Post{
		Text:        fmt.Sprintf("Post number %d", i+1),
		Image:       ptr(fmt.Sprintf("https://picsum.photos/600/400?random=%d", i)),
		Link:        ptr(fmt.Sprintf("https://example.com/%d", i)),
		Tags:        g.randomTags(),
		PublishDate: g.randomDateLocked(2020, 2025),
		OwnerID:     ownerID,
	}
}

// randomTags вызывается под g.mu.
func (g *Generator) randomTags() []string {
	return domain.UniqueTags([]string{
		fmt.Sprintf("tag%d", g.rnd.IntN(tagPoolSize)),
		fmt.Sprintf("tag%d", g.rnd.IntN(tagPoolSize)),
	})
}

func (g *Generator) randomDate(startYear, endYear int) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.randomDateLocked(startYear, endYear)
}

func (g *Generator) randomDateLocked(startYear, endYear int) time.Time {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(g.rnd.Int64N(int64(end.Sub(start)))))
}

func (g *Generator) pick(ids []string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ids[g.rnd.IntN(len(ids))]
}

func (g *Generator) chance(p float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64() < p
}

func ptr(s string) *string { return &s }
