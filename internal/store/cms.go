package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/relique/internal/models"
)

//
// --- Posts ---
//

const postColumns = `id, author_id, title, slug, excerpt, body, cover_image, status, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var excerpt, body, cover sql.NullString
	var publishedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &excerpt, &body, &cover, &p.Status,
		&publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Excerpt = excerpt.String
	p.Body = body.String
	p.CoverImage = stringPtr(cover)
	p.PublishedAt = timePtr(publishedAt)
	return &p, nil
}

// CreatePost inserts p with a unique slug derived from its title (or from
// p.Slug when set).
func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	source := p.Slug
	if source == "" {
		source = p.Title
	}
	slugValue, err := s.uniqueSlug(ctx, "posts", source, "")
	if err != nil {
		return err
	}
	p.ID = newID()
	p.Slug = slugValue
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if p.Status == models.DocPublished && p.PublishedAt == nil {
		at := p.CreatedAt
		p.PublishedAt = &at
	}

	_, err = s.exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AuthorID, p.Title, p.Slug, p.Excerpt, p.Body, nullString(p.CoverImage), p.Status,
		nullTime(p.PublishedAt), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

func (s *Store) getPost(ctx context.Context, column, value string) (*models.Post, error) {
	p, err := scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return p, nil
}

// GetPost returns a post by ID.
func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.getPost(ctx, "id", id)
}

// GetPostBySlug returns a post by slug.
func (s *Store) GetPostBySlug(ctx context.Context, slugValue string) (*models.Post, error) {
	return s.getPost(ctx, "slug", slugValue)
}

// ListPosts returns posts, newest published first, optionally by status.
func (s *Store) ListPosts(ctx context.Context, status string, page Page) ([]models.Post, int, error) {
	page = page.Normalize()
	var w whereClause
	if status != "" {
		w.add("status = ?", status)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM posts`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting posts: %w", err)
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx,
		`SELECT `+postColumns+` FROM posts`+w.String()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// UpdatePost writes p back. The slug changes only when p.Slug was changed
// by the caller; it is re-checked for uniqueness.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	slugValue, err := s.uniqueSlug(ctx, "posts", p.Slug, p.ID)
	if err != nil {
		return err
	}
	p.Slug = slugValue
	p.UpdatedAt = s.now()
	if p.Status == models.DocPublished && p.PublishedAt == nil {
		at := p.UpdatedAt
		p.PublishedAt = &at
	}

	res, err := s.exec(ctx,
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, body = ?, cover_image = ?, status = ?, published_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Body, nullString(p.CoverImage), p.Status, nullTime(p.PublishedAt), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

//
// --- Events ---
//

const eventColumns = `id, author_id, title, slug, description, location, cover_image, status, starts_at, ends_at, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	var description, location, cover sql.NullString
	var endsAt sql.NullTime
	if err := row.Scan(&e.ID, &e.AuthorID, &e.Title, &e.Slug, &description, &location, &cover, &e.Status,
		&e.StartsAt, &endsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Location = location.String
	e.CoverImage = stringPtr(cover)
	e.EndsAt = timePtr(endsAt)
	return &e, nil
}

// CreateEvent inserts e with a unique slug.
func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	source := e.Slug
	if source == "" {
		source = e.Title
	}
	slugValue, err := s.uniqueSlug(ctx, "events", source, "")
	if err != nil {
		return err
	}
	e.ID = newID()
	e.Slug = slugValue
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	e.StartsAt = e.StartsAt.UTC()

	_, err = s.exec(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AuthorID, e.Title, e.Slug, e.Description, e.Location, nullString(e.CoverImage), e.Status,
		e.StartsAt, nullTime(utcPtr(e.EndsAt)), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func (s *Store) getEvent(ctx context.Context, column, value string) (*models.Event, error) {
	e, err := scanEvent(s.queryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return e, nil
}

// GetEvent returns an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.getEvent(ctx, "id", id)
}

// GetEventBySlug returns an event by slug.
func (s *Store) GetEventBySlug(ctx context.Context, slugValue string) (*models.Event, error) {
	return s.getEvent(ctx, "slug", slugValue)
}

// EventFilter narrows ListEvents. Upcoming keeps events that have not ended
// (or, without an end, not started) yet and orders them soonest first.
type EventFilter struct {
	Status   string
	Upcoming bool
	Page
}

// ListEvents returns events plus the total count.
func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]models.Event, int, error) {
	page := f.Page.Normalize()
	var w whereClause
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	order := " ORDER BY starts_at DESC, id DESC"
	if f.Upcoming {
		now := s.now()
		w.add("(ends_at >= ? OR (ends_at IS NULL AND starts_at >= ?))", now, now)
		order = " ORDER BY starts_at ASC, id ASC"
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM events`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx, `SELECT `+eventColumns+` FROM events`+w.String()+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}

// UpdateEvent writes e back.
func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	slugValue, err := s.uniqueSlug(ctx, "events", e.Slug, e.ID)
	if err != nil {
		return err
	}
	e.Slug = slugValue
	e.UpdatedAt = s.now()

	res, err := s.exec(ctx,
		`UPDATE events SET title = ?, slug = ?, description = ?, location = ?, cover_image = ?, status = ?,
		        starts_at = ?, ends_at = ?, updated_at = ?
		 WHERE id = ?`,
		e.Title, e.Slug, e.Description, e.Location, nullString(e.CoverImage), e.Status,
		e.StartsAt.UTC(), nullTime(utcPtr(e.EndsAt)), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
