package store

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Format      string     `json:"format"`
	CoverImage  string     `json:"cover_image"`
	CategoryID  string     `json:"category_id,omitempty"`
	Author      string     `json:"author"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Resource kinds.
const (
	KindAudio    = "audio"
	KindVideo    = "video"
	KindDocument = "document"
	KindLink     = "link"
)

type Resource struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Kind            string    `json:"kind"`
	URL             string    `json:"url"`
	Thumbnail       string    `json:"thumbnail"`
	CategoryID      string    `json:"category_id,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Subscriber struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Active         bool       `json:"active"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type SocialLink struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

// Counts summarizes the collections for the admin dashboard.
type Counts struct {
	Posts             int `json:"posts"`
	PublishedPosts    int `json:"published_posts"`
	Categories        int `json:"categories"`
	Resources         int `json:"resources"`
	ActiveSubscribers int `json:"active_subscribers"`
	Messages          int `json:"messages"`
	UnreadMessages    int `json:"unread_messages"`
	ActiveSocialLinks int `json:"active_social_links"`
}
