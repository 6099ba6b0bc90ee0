package storage

import (
	"testing"
	"time"

	"github.com/UkralStul/social-feed/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPageArgs_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageArgs
		want PageArgs
	}{
		{"zero values", PageArgs{}, PageArgs{Page: 1, Limit: 10, SortBy: DefaultPostSort}},
		{"negative page", PageArgs{Page: -3, Limit: 5}, PageArgs{Page: 1, Limit: 5, SortBy: DefaultPostSort}},
		{"zero limit", PageArgs{Page: 2, Limit: 0, SortBy: "likes"}, PageArgs{Page: 2, Limit: 10, SortBy: "likes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(DefaultPostSort))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Paginate(items, PageArgs{Page: 1, Limit: 3}))
	assert.Equal(t, []int{7}, Paginate(items, PageArgs{Page: 3, Limit: 3}))
	assert.Empty(t, Paginate(items, PageArgs{Page: 4, Limit: 3}))
	assert.NotNil(t, Paginate(items, PageArgs{Page: 10, Limit: 3}))

	page := Paginate(items, PageArgs{Page: 1, Limit: 2})
	page[0] = 100
	assert.Equal(t, 1, items[0], "page must not alias the source slice")
}

func TestSortPosts(t *testing.T) {
	now := time.Now()
	posts := []*domain.Post{
		{ID: "a", Likes: 3, PublishDate: now},
		{ID: "b", Likes: 1, PublishDate: now.Add(-time.Hour)},
		{ID: "c", Likes: 3, PublishDate: now.Add(-2 * time.Hour)},
	}

	SortPosts(posts, "likes")
	assert.Equal(t, []string{"b", "a", "c"}, ids(posts))

	SortPosts(posts, "publishDate")
	assert.Equal(t, []string{"c", "b", "a"}, ids(posts))

	SortPosts(posts, "unknown")
	assert.Equal(t, []string{"c", "b", "a"}, ids(posts))
}

func TestSortUsers_NilDateOfBirthFirst(t *testing.T) {
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []*domain.User{{ID: "with", DateOfBirth: &dob}, {ID: "without"}}

	SortUsers(users, "dateOfBirth")
	assert.Equal(t, "without", users[0].ID)
}

func ids(posts []*domain.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}
