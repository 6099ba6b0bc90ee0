package inmemory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/google/uuid"
)

// Store реализует интерфейс Storage в памяти.
// Коллекции хранятся в порядке вставки, наружу отдаются копии записей.
type Store struct {
	mu       sync.RWMutex
	users    []*domain.User
	posts    []*domain.Post
	comments []*domain.Comment
	likes    []*domain.Like
	tags     []string
	tagSet   map[string]struct{}
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{tagSet: make(map[string]struct{})}
}

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = nil
	s.posts = nil
	s.comments = nil
	s.likes = nil
	s.tags = nil
	s.tagSet = make(map[string]struct{})
	return nil
}

// === User Methods ===

func (s *Store) ListUsers(ctx context.Context, args storage.PageArgs) (*domain.UserPage, error) {
	args = args.Normalize(storage.DefaultUserSort)

	s.mu.RLock()
	all := make([]*domain.User, len(s.users))
	for i, u := range s.users {
		all[i] = cloneUser(u)
	}
	s.mu.RUnlock()

	storage.SortUsers(all, args.SortBy)
	return &domain.UserPage{
		Data:  storage.Paginate(all, args),
		Total: len(all),
		Page:  args.Page,
		Limit: args.Limit,
	}, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}
	return cloneUser(s.users[i]), nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	result := make(map[string]*domain.User, len(ids))
	for _, u := range s.users {
		if _, ok := want[u.ID]; ok {
			result[u.ID] = cloneUser(u)
		}
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = uuid.NewString()
	if user.RegisterDate.IsZero() {
		user.RegisterDate = time.Now().UTC()
	}
	s.users = append(s.users, cloneUser(user))
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}
	patch.Apply(s.users[i])
	return cloneUser(s.users[i]), nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
	}
	s.users = slices.Delete(s.users, i, i+1)

	owned := make(map[string]struct{})
	s.posts = slices.DeleteFunc(s.posts, func(p *domain.Post) bool {
		if p.OwnerID == id {
			owned[p.ID] = struct{}{}
			return true
		}
		return false
	})
	s.comments = slices.DeleteFunc(s.comments, func(c *domain.Comment) bool {
		_, onOwnedPost := owned[c.PostID]
		return c.OwnerID == id || onOwnedPost
	})
	// Лайки пользователя остаются, см. DESIGN.md.
	return nil
}

func (s *Store) RandomUserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.users) == 0 {
		return "", fmt.Errorf("no users: %w", storage.ErrNotFound)
	}
	return s.users[rand.IntN(len(s.users))].ID, nil
}

// === Post Methods ===

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.PageArgs) (*domain.PostPage, error) {
	args = args.Normalize(storage.DefaultPostSort)

	all, err := s.FindPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	storage.SortPosts(all, args.SortBy)
	return &domain.PostPage{
		Data:  storage.Paginate(all, args),
		Total: len(all),
		Page:  args.Page,
		Limit: args.Limit,
	}, nil
}

func (s *Store) FindPosts(ctx context.Context, filter storage.PostFilter) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Tag != "" && !slices.Contains(p.Tags, filter.Tag) {
			continue
		}
		result = append(result, clonePost(p))
	}
	return result, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.postIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return clonePost(s.posts[i]), nil
}

func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) (map[string]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	result := make(map[string]*domain.Post, len(ids))
	for _, p := range s.posts {
		if _, ok := want[p.ID]; ok {
			result[p.ID] = clonePost(p)
		}
	}
	return result, nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.NewString()
	post.Likes = 0
	post.Tags = domain.UniqueTags(post.Tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.PublishDate.IsZero() {
		post.PublishDate = time.Now().UTC()
	}
	s.posts = append(s.posts, clonePost(post))
	s.addTags(post.Tags)
	return post, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.postIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	patch.Apply(s.posts[i])
	s.addTags(patch.Tags)
	return clonePost(s.posts[i]), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.postIndex(id)
	if i < 0 {
		return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	s.posts = slices.Delete(s.posts, i, i+1)
	s.comments = slices.DeleteFunc(s.comments, func(c *domain.Comment) bool {
		return c.PostID == id
	})
	return nil
}

// === Like Methods ===

func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.postIndex(postID)
	if i < 0 {
		return nil, false, fmt.Errorf("post with id %s: %w", postID, storage.ErrNotFound)
	}
	post := s.posts[i]

	li := slices.IndexFunc(s.likes, func(l *domain.Like) bool {
		return l.PostID == postID && l.UserID == userID
	})
	if li >= 0 {
		s.likes = slices.Delete(s.likes, li, li+1)
		post.Likes--
		return clonePost(post), false, nil
	}

	s.likes = append(s.likes, &domain.Like{
		ID:        uuid.NewString(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	post.Likes++
	return clonePost(post), true, nil
}

func (s *Store) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.ContainsFunc(s.likes, func(l *domain.Like) bool {
		return l.PostID == postID && l.UserID == userID
	}), nil
}

// === Comment Methods ===

func (s *Store) ListComments(ctx context.Context, filter storage.CommentFilter, args storage.PageArgs) (*domain.CommentPage, error) {
	args = args.Normalize(storage.DefaultCommentSort)

	all, err := s.FindComments(ctx, filter)
	if err != nil {
		return nil, err
	}
	storage.SortComments(all, args.SortBy)
	return &domain.CommentPage{
		Data:  storage.Paginate(all, args),
		Total: len(all),
		Page:  args.Page,
		Limit: args.Limit,
	}, nil
}

func (s *Store) FindComments(ctx context.Context, filter storage.CommentFilter) ([]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if filter.PostID != "" && c.PostID != filter.PostID {
			continue
		}
		if filter.OwnerID != "" && c.OwnerID != filter.OwnerID {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	return result, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment.ID = uuid.NewString()
	if comment.PublishDate.IsZero() {
		comment.PublishDate = time.Now().UTC()
	}
	cp := *comment
	s.comments = append(s.comments, &cp)
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.comments, func(c *domain.Comment) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("comment with id %s: %w", id, storage.ErrNotFound)
	}
	s.comments = slices.Delete(s.comments, i, i+1)
	return nil
}

// === Tag Methods ===

func (s *Store) Tags(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags), nil
}

// addTags вызывается под блокировкой на запись.
func (s *Store) addTags(tags []string) {
	for _, t := range tags {
		if _, ok := s.tagSet[t]; ok {
			continue
		}
		s.tagSet[t] = struct{}{}
		s.tags = append(s.tags, t)
	}
}

// === Dataloader Methods ===

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		results[id] = []*domain.Comment{}
	}
	for _, c := range s.comments {
		if bucket, ok := results[c.PostID]; ok {
			cp := *c
			results[c.PostID] = append(bucket, &cp)
		}
	}
	return results, nil
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u *domain.User) bool { return u.ID == id })
}

func (s *Store) postIndex(id string) int {
	return slices.IndexFunc(s.posts, func(p *domain.Post) bool { return p.ID == id })
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp
}

func clonePost(p *domain.Post) *domain.Post {
	cp := *p
	cp.Tags = slices.Clone(p.Tags)
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	return &cp
}
