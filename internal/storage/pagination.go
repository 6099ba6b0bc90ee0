package storage

import (
	"cmp"
	"slices"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	DefaultUserSort    = "registerDate"
	DefaultPostSort    = "publishDate"
	DefaultCommentSort = "publishDate"
)

// PageArgs - аргументы для пагинации.
type PageArgs struct {
	Page   int
	Limit  int
	SortBy string
}

// Normalize подставляет значения по умолчанию.
// page < 1 считается первой страницей, limit < 1 - лимитом по умолчанию.
func (a PageArgs) Normalize(defaultSort string) PageArgs {
	if a.Page < 1 {
		a.Page = DefaultPage
	}
	if a.Limit < 1 {
		a.Limit = DefaultLimit
	}
	if a.SortBy == "" {
		a.SortBy = defaultSort
	}
	return a
}

// Offset - индекс первого элемента страницы.
func (a PageArgs) Offset() int {
	return (a.Page - 1) * a.Limit
}

// Bounds возвращает границы среза страницы для коллекции размера total.
// Страница за пределами коллекции даёт пустой срез.
func (a PageArgs) Bounds(total int) (start, end int) {
	start = a.Offset()
	if start >= total {
		return total, total
	}
	end = start + a.Limit
	if end > total {
		end = total
	}
	return start, end
}

// Paginate вырезает страницу из уже отфильтрованной и отсортированной коллекции.
func Paginate[T any](items []T, args PageArgs) []T {
	start, end := args.Bounds(len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])
	return page
}

type comparator[T any] func(a, b T) int

func compareStrPtr(a, b *string) int {
	return cmp.Compare(deref(a), deref(b))
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var userComparators = map[string]comparator[*domain.User]{
	"id":           func(a, b *domain.User) int { return cmp.Compare(a.ID, b.ID) },
	"title":        func(a, b *domain.User) int { return compareStrPtr(a.Title, b.Title) },
	"firstName":    func(a, b *domain.User) int { return cmp.Compare(a.FirstName, b.FirstName) },
	"lastName":     func(a, b *domain.User) int { return cmp.Compare(a.LastName, b.LastName) },
	"gender":       func(a, b *domain.User) int { return compareStrPtr(a.Gender, b.Gender) },
	"email":        func(a, b *domain.User) int { return cmp.Compare(a.Email, b.Email) },
	"phone":        func(a, b *domain.User) int { return compareStrPtr(a.Phone, b.Phone) },
	"dateOfBirth":  func(a, b *domain.User) int { return compareTimePtr(a.DateOfBirth, b.DateOfBirth) },
	"registerDate": func(a, b *domain.User) int { return a.RegisterDate.Compare(b.RegisterDate) },
}

var postComparators = map[string]comparator[*domain.Post]{
	"id":          func(a, b *domain.Post) int { return cmp.Compare(a.ID, b.ID) },
	"text":        func(a, b *domain.Post) int { return cmp.Compare(a.Text, b.Text) },
	"image":       func(a, b *domain.Post) int { return compareStrPtr(a.Image, b.Image) },
	"link":        func(a, b *domain.Post) int { return compareStrPtr(a.Link, b.Link) },
	"likes":       func(a, b *domain.Post) int { return cmp.Compare(a.Likes, b.Likes) },
	"owner":       func(a, b *domain.Post) int { return cmp.Compare(a.OwnerID, b.OwnerID) },
	"publishDate": func(a, b *domain.Post) int { return a.PublishDate.Compare(b.PublishDate) },
}

var commentComparators = map[string]comparator[*domain.Comment]{
	"id":          func(a, b *domain.Comment) int { return cmp.Compare(a.ID, b.ID) },
	"message":     func(a, b *domain.Comment) int { return cmp.Compare(a.Message, b.Message) },
	"owner":       func(a, b *domain.Comment) int { return cmp.Compare(a.OwnerID, b.OwnerID) },
	"post":        func(a, b *domain.Comment) int { return cmp.Compare(a.PostID, b.PostID) },
	"publishDate": func(a, b *domain.Comment) int { return a.PublishDate.Compare(b.PublishDate) },
}

// SortUsers устойчиво сортирует по возрастанию поля. Неизвестное поле оставляет порядок вставки.
func SortUsers(users []*domain.User, field string) {
	if c, ok := userComparators[field]; ok {
		slices.SortStableFunc(users, c)
	}
}

// SortPosts устойчиво сортирует посты по возрастанию поля.
func SortPosts(posts []*domain.Post, field string) {
	if c, ok := postComparators[field]; ok {
		slices.SortStableFunc(posts, c)
	}
}

// SortComments устойчиво сортирует комментарии по возрастанию поля.
func SortComments(comments []*domain.Comment, field string) {
	if c, ok := commentComparators[field]; ok {
		slices.SortStableFunc(comments, c)
	}
}

// Колонки для ORDER BY в SQL-хранилищах.
var (
	UserSortColumns = map[string]string{
		"id":           "id",
		"title":        "title",
		"firstName":    "first_name",
		"lastName":     "last_name",
		"gender":       "gender",
		"email":        "email",
		"phone":        "phone",
		"dateOfBirth":  "date_of_birth",
		"registerDate": "register_date",
	}
	PostSortColumns = map[string]string{
		"id":          "id",
		"text":        "text",
		"image":       "image",
		"link":        "link",
		"likes":       "likes",
		"owner":       "owner_id",
		"publishDate": "publish_date",
	}
	CommentSortColumns = map[string]string{
		"id":          "id",
		"message":     "message",
		"owner":       "owner_id",
		"post":        "post_id",
		"publishDate": "publish_date",
	}
)
