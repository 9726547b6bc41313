package models

import "time"

// CMS document statuses
const (
	DocDraft     = "draft"
	DocPublished = "published"
)

// Post is a CMS article.
type Post struct {
	ID          string     `json:"id" db:"id"`
	AuthorID    string     `json:"authorId" db:"author_id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Excerpt     string     `json:"excerpt" db:"excerpt"`
	Body        string     `json:"body" db:"body"`
	CoverImage  *string    `json:"coverImage,omitempty" db:"cover_image"`
	Status      string     `json:"status" db:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Event is a CMS calendar entry (fairs, auctions, signings).
type Event struct {
	ID          string     `json:"id" db:"id"`
	AuthorID    string     `json:"authorId" db:"author_id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	Location    string     `json:"location" db:"location"`
	CoverImage  *string    `json:"coverImage,omitempty" db:"cover_image"`
	Status      string     `json:"status" db:"status"`
	StartsAt    time.Time  `json:"startsAt" db:"starts_at"`
	EndsAt      *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Setting is one global key/value (site title, maintenance mode, ...).
type Setting struct {
	Key         string    `json:"key" db:"setting_key"`
	Value       string    `json:"value" db:"setting_value"`
	Description string    `json:"description,omitempty" db:"description"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Well-known setting keys
const (
	SettingMaintenanceMode = "maintenance_mode"
	SettingSiteTitle       = "site_title"
	SettingContactEmail    = "contact_email"
	SettingAnnouncement    = "announcement"
)
