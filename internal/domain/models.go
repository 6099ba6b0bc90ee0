package domain

import "time"

// Location - адрес пользователя.
type Location struct {
	Street   *string `json:"street,omitempty" gorm:"type:varchar(255)"`
	City     *string `json:"city,omitempty" gorm:"type:varchar(255)"`
	State    *string `json:"state,omitempty" gorm:"type:varchar(255)"`
	Country  *string `json:"country,omitempty" gorm:"type:varchar(255)"`
	Timezone *string `json:"timezone,omitempty" gorm:"type:varchar(16)"`
}

// User представляет пользователя в системе.
type User struct {
	ID           string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title        *string    `json:"title,omitempty" gorm:"type:varchar(16)"`
	FirstName    string     `json:"firstName" gorm:"type:varchar(255);not null"`
	LastName     string     `json:"lastName" gorm:"type:varchar(255);not null"`
	Gender       *string    `json:"gender,omitempty" gorm:"type:varchar(16)"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	RegisterDate time.Time  `json:"registerDate" gorm:"not null;index"`
	Phone        *string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Picture      *string    `json:"picture,omitempty" gorm:"type:text"`
	Location     *Location  `json:"location,omitempty" gorm:"embedded;embeddedPrefix:location_"`
}

// Post представляет пост в ленте.
// OwnerID - слабая ссылка на User, владелец резолвится при чтении.
type Post struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       *string   `json:"image,omitempty" gorm:"type:text"`
	Link        *string   `json:"link,omitempty" gorm:"type:text"`
	Likes       int       `json:"likes" gorm:"not null;default:0"`
	Tags        []string  `json:"tags" gorm:"type:jsonb;serializer:json"`
	PublishDate time.Time `json:"publishDate" gorm:"not null;index"`
	OwnerID     string    `json:"owner" gorm:"column:owner_id;type:varchar(36);not null;index"`
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	PublishDate time.Time `json:"publishDate" gorm:"not null;index"`
	OwnerID     string    `json:"owner" gorm:"column:owner_id;type:varchar(36);not null;index"`
	PostID      string    `json:"post" gorm:"column:post_id;type:varchar(36);not null;index"`
}

// Like - отметка "нравится". Пара (UserID, PostID) уникальна.
type Like struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_like_user_post"`
	PostID    string    `json:"postId" gorm:"type:varchar(36);not null;uniqueIndex:idx_like_user_post"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// Tag - глобальный реестр тегов, порядок - по первому появлению.
type Tag struct {
	Name      string    `gorm:"type:varchar(255);primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// UserPage - страница пользователей.
type UserPage struct {
	Data  []*User `json:"data"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// PostPage - страница постов.
type PostPage struct {
	Data  []*Post `json:"data"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// CommentPage - страница комментариев.
type CommentPage struct {
	Data  []*Comment `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
