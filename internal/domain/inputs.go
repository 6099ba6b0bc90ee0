package domain

import "time"

// LocationInput - адрес во входных данных мутаций.
type LocationInput struct {
	Street   *string `json:"street,omitempty"`
	City     *string `json:"city,omitempty"`
	State    *string `json:"state,omitempty"`
	Country  *string `json:"country,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

// ToLocation переводит вход в сущность.
func (in *LocationInput) ToLocation() *Location {
	if in == nil {
		return nil
	}
	return &Location{
		Street:   in.Street,
		City:     in.City,
		State:    in.State,
		Country:  in.Country,
		Timezone: in.Timezone,
	}
}

// NewUser - вход createUser.
type NewUser struct {
	Title       *string        `json:"title,omitempty"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Gender      *string        `json:"gender,omitempty"`
	Email       string         `json:"email"`
	DateOfBirth *time.Time     `json:"dateOfBirth,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Picture     *string        `json:"picture,omitempty"`
	Location    *LocationInput `json:"location,omitempty"`
}

// UserPatch - вход updateUser. Nil-поля не меняются.
// Email принимается схемой, но при обновлении отбрасывается.
type UserPatch struct {
	Title       *string        `json:"title,omitempty"`
	FirstName   *string        `json:"firstName,omitempty"`
	LastName    *string        `json:"lastName,omitempty"`
	Gender      *string        `json:"gender,omitempty"`
	Email       *string        `json:"email,omitempty"`
	DateOfBirth *time.Time     `json:"dateOfBirth,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Picture     *string        `json:"picture,omitempty"`
	Location    *LocationInput `json:"location,omitempty"`
}

// Apply выполняет поверхностное слияние патча с пользователем.
func (p UserPatch) Apply(u *User) {
	if p.Title != nil {
		u.Title = p.Title
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = p.DateOfBirth
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Picture != nil {
		u.Picture = p.Picture
	}
	if p.Location != nil {
		u.Location = p.Location.ToLocation()
	}
}

// NewPost - вход createPost.
type NewPost struct {
	Text  string   `json:"text"`
	Image *string  `json:"image,omitempty"`
	Link  *string  `json:"link,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Owner string   `json:"owner"`
}

// PostPatch - вход updatePost. Owner при обновлении отбрасывается.
type PostPatch struct {
	Text  *string  `json:"text,omitempty"`
	Image *string  `json:"image,omitempty"`
	Link  *string  `json:"link,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Owner *string  `json:"owner,omitempty"`
}

// Apply выполняет поверхностное слияние патча с постом.
func (p PostPatch) Apply(post *Post) {
	if p.Text != nil {
		post.Text = *p.Text
	}
	if p.Image != nil {
		post.Image = p.Image
	}
	if p.Link != nil {
		post.Link = p.Link
	}
	if p.Tags != nil {
		post.Tags = UniqueTags(p.Tags)
	}
	if p.Owner != nil {
		post.OwnerID = *p.Owner
	}
}

// NewComment - вход createComment.
type NewComment struct {
	Message string `json:"message"`
	Owner   string `json:"owner"`
	Post    string `json:"post"`
}

// UniqueTags убирает повторы, сохраняя порядок первого появления.
func UniqueTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
