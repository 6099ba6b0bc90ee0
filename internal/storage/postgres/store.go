package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
	"github.com/UkralStul/social-feed/internal/storage"
	"github.com/google/uuid"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}, &domain.Like{}, &domain.Tag{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset очищает все таблицы: состояние не переживает рестарт.
func (s *Store) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("TRUNCATE TABLE likes, comments, posts, users, tags").Error
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, storage.ErrNotFound)...)
	}
	return err
}

// orderBy строит ORDER BY по белому списку колонок; неизвестное поле сортирует по fallback.
func orderBy(columns map[string]string, field, fallback string) clause.OrderBy {
	cols := []clause.OrderByColumn{}
	if col, ok := columns[field]; ok && col != fallback {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: col}})
	}
	cols = append(cols,
		clause.OrderByColumn{Column: clause.Column{Name: fallback}},
		clause.OrderByColumn{Column: clause.Column{Name: "id"}},
	)
	return clause.OrderBy{Columns: cols}
}

// === User Methods ===

func (s *Store) ListUsers(ctx context.Context, args storage.PageArgs) (*domain.UserPage, error) {
	args = args.Normalize(storage.DefaultUserSort)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, err
	}
	users := []*domain.User{}
	err := db.Clauses(orderBy(storage.UserSortColumns, args.SortBy, "register_date")).
		Limit(args.Limit).Offset(args.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return &domain.UserPage{Data: users, Total: int(total), Page: args.Page, Limit: args.Limit}, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user with id %s", id)
	}
	return &user, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*domain.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.ID = uuid.NewString()
	if user.RegisterDate.IsZero() {
		user.RegisterDate = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	var user domain.User
	// Используем транзакцию для атомарности операции чтения-записи
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return notFound(err, "user with id %s", id)
		}
		patch.Apply(&user)
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user with id %s: %w", id, storage.ErrNotFound)
		}

		var owned []string
		if err := tx.Model(&domain.Post{}).Where("owner_id = ?", id).Pluck("id", &owned).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ? OR post_id IN ?", id, owned).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		// Лайки пользователя остаются, см. DESIGN.md.
		return tx.Where("owner_id = ?", id).Delete(&domain.Post{}).Error
	})
}

func (s *Store) RandomUserID(ctx context.Context) (string, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Select("id").Order("RANDOM()").Take(&user).Error
	if err != nil {
		return "", notFound(err, "no users")
	}
	return user.ID, nil
}

// === Post Methods ===

func (s *Store) postQuery(ctx context.Context, filter storage.PostFilter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&domain.Post{})
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Tag != "" {
		tag, err := json.Marshal([]string{filter.Tag})
		if err != nil {
			return nil, err
		}
		q = q.Where("tags @> ?::jsonb", string(tag))
	}
	return q, nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, args storage.PageArgs) (*domain.PostPage, error) {
	args = args.Normalize(storage.DefaultPostSort)

	q, err := s.postQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	posts := []*domain.Post{}
	err = q.Clauses(orderBy(storage.PostSortColumns, args.SortBy, "publish_date")).
		Limit(args.Limit).Offset(args.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return &domain.PostPage{Data: posts, Total: int(total), Page: args.Page, Limit: args.Limit}, nil
}

func (s *Store) FindPosts(ctx context.Context, filter storage.PostFilter) ([]*domain.Post, error) {
	q, err := s.postQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	posts := []*domain.Post{}
	err = q.Order("publish_date ASC").Find(&posts).Error
	return posts, err
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		// GORM возвращает gorm.ErrRecordNotFound, если запись не найдена
		return nil, notFound(err, "post with id %s", id)
	}
	return &post, nil
}

func (s *Store) GetPostsByIDs(ctx context.Context, ids []string) (map[string]*domain.Post, error) {
	var posts []*domain.Post
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	result := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		result[p.ID] = p
	}
	return result, nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	post.ID = uuid.NewString()
	post.Likes = 0
	post.Tags = domain.UniqueTags(post.Tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.PublishDate.IsZero() {
		post.PublishDate = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return addTags(tx, post.Tags)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", id).Error; err != nil {
			return notFound(err, "post with id %s", id)
		}
		patch.Apply(&post)
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		return addTags(tx, patch.Tags)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
		}
		return tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error
	})
}

// addTags регистрирует теги в глобальном реестре, существующие пропускаются.
func addTags(tx *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tags := make([]domain.Tag, 0, len(names))
	for i, name := range domain.UniqueTags(names) {
		// Сдвиг сохраняет порядок тегов внутри одной вставки
		tags = append(tags, domain.Tag{Name: name, CreatedAt: now.Add(time.Duration(i) * time.Microsecond)})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error
}

// === Like Methods ===

func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (*domain.Post, bool, error) {
	var post domain.Post
	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", postID).Error; err != nil {
			return notFound(err, "post with id %s", postID)
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&domain.Like{})
		if res.Error != nil {
			return res.Error
		}
		delta := -1
		if res.RowsAffected == 0 {
			like := &domain.Like{ID: uuid.NewString(), UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()}
			if err := tx.Create(like).Error; err != nil {
				return err
			}
			delta, liked = 1, true
		}
		post.Likes += delta
		return tx.Model(&post).UpdateColumn("likes", post.Likes).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &post, liked, nil
}

func (s *Store) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// === Comment Methods ===

func (s *Store) commentQuery(ctx context.Context, filter storage.CommentFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&domain.Comment{})
	if filter.PostID != "" {
		q = q.Where("post_id = ?", filter.PostID)
	}
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	return q
}

func (s *Store) ListComments(ctx context.Context, filter storage.CommentFilter, args storage.PageArgs) (*domain.CommentPage, error) {
	args = args.Normalize(storage.DefaultCommentSort)
	q := s.commentQuery(ctx, filter)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	comments := []*domain.Comment{}
	err := q.Clauses(orderBy(storage.CommentSortColumns, args.SortBy, "publish_date")).
		Limit(args.Limit).Offset(args.Offset()).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return &domain.CommentPage{Data: comments, Total: int(total), Page: args.Page, Limit: args.Limit}, nil
}

func (s *Store) FindComments(ctx context.Context, filter storage.CommentFilter) ([]*domain.Comment, error) {
	comments := []*domain.Comment{}
	err := s.commentQuery(ctx, filter).Order("publish_date ASC").Find(&comments).Error
	return comments, err
}

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	comment.ID = uuid.NewString()
	if comment.PublishDate.IsZero() {
		comment.PublishDate = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment with id %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// === Tag Methods ===

func (s *Store) Tags(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.WithContext(ctx).Model(&domain.Tag{}).Order("created_at ASC").Pluck("name", &names).Error
	return names, err
}

// === Dataloader Method ===

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	var comments []*domain.Comment
	// Загружаем комментарии всех переданных постов одним запросом
	err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id, publish_date ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	// Группируем результаты в карту map[postID][]*Comment
	result := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = []*domain.Comment{}
	}
	for _, c := range comments {
		result[c.PostID] = append(result[c.PostID], c)
	}
	return result, nil
}
