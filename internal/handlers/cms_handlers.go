package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// --- Inputs ---

// PostInput is the body of POST /v1/cms/posts and PUT /v1/cms/posts/:id.
type PostInput struct {
	Title      string  `json:"title" binding:"required,max=200"`
	Slug       string  `json:"slug" binding:"omitempty,max=200"`
	Excerpt    string  `json:"excerpt" binding:"max=500"`
	Body       string  `json:"body"`
	CoverImage *string `json:"coverImage" binding:"omitempty,url"`
	Status     string  `json:"status" binding:"required,oneof=draft published"`
}

// EventInput is the body of POST /v1/cms/events and PUT /v1/cms/events/:id.
type EventInput struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Slug        string     `json:"slug" binding:"omitempty,max=200"`
	Description string     `json:"description"`
	Location    string     `json:"location" binding:"max=200"`
	CoverImage  *string    `json:"coverImage" binding:"omitempty,url"`
	Status      string     `json:"status" binding:"required,oneof=draft published"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
}

func bindEvent(c *gin.Context) (*EventInput, bool) {
	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if input.EndsAt != nil && input.EndsAt.Before(input.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endsAt cannot be before startsAt"})
		return nil, false
	}
	return &input, true
}

//
// --- Public content ---
//

// ListPublicPosts handles GET /v1/posts.
func (h *Handlers) ListPublicPosts(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	posts, total, err := h.Store.ListPosts(c.Request.Context(), models.DocPublished, page)
	if err != nil {
		h.respondError(c, err, "Posts")
		return
	}
	c.JSON(http.StatusOK, pageResponse("posts", posts, total, page))
}

// GetPublicPost handles GET /v1/posts/:slug.
func (h *Handlers) GetPublicPost(c *gin.Context) {
	post, err := h.Store.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err == nil && post.Status != models.DocPublished {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err, "Post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

type eventQuery struct {
	pageQuery
	Upcoming bool `form:"upcoming"`
}

// ListPublicEvents handles GET /v1/events (optional ?upcoming=true).
func (h *Handlers) ListPublicEvents(c *gin.Context) {
	var q eventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	events, total, err := h.Store.ListEvents(c.Request.Context(), store.EventFilter{
		Status:   models.DocPublished,
		Upcoming: q.Upcoming,
		Page:     page,
	})
	if err != nil {
		h.respondError(c, err, "Events")
		return
	}
	c.JSON(http.StatusOK, pageResponse("events", events, total, page))
}

// GetPublicEvent handles GET /v1/events/:slug.
func (h *Handlers) GetPublicEvent(c *gin.Context) {
	event, err := h.Store.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if err == nil && event.Status != models.DocPublished {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err, "Event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

//
// --- CMS: posts ---
//

// ListCMSPosts handles GET /v1/cms/posts. Drafts are included.
func (h *Handlers) ListCMSPosts(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	posts, total, err := h.Store.ListPosts(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		h.respondError(c, err, "Posts")
		return
	}
	c.JSON(http.StatusOK, pageResponse("posts", posts, total, page))
}

// CreatePost handles POST /v1/cms/posts.
func (h *Handlers) CreatePost(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Save ---
	post := &models.Post{
		AuthorID:   middleware.UserID(c),
		Title:      strings.TrimSpace(input.Title),
		Slug:       input.Slug,
		Excerpt:    input.Excerpt,
		Body:       input.Body,
		CoverImage: input.CoverImage,
		Status:     input.Status,
	}
	if err := h.Store.CreatePost(c.Request.Context(), post); err != nil {
		h.respondError(c, err, "Post")
		return
	}

	// 3. --- Audit ---
	h.recordAudit(c, "post.create", "post", post.ID, nil, strPtr(post.Status), map[string]any{"title": post.Title})
	c.JSON(http.StatusCreated, gin.H{"message": "Post created", "post": post})
}

// UpdatePost handles PUT /v1/cms/posts/:id.
func (h *Handlers) UpdatePost(c *gin.Context) {
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	post, err := h.Store.GetPost(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Post")
		return
	}
	previous := post.Status

	post.Title = strings.TrimSpace(input.Title)
	if input.Slug != "" {
		post.Slug = input.Slug
	}
	post.Excerpt = input.Excerpt
	post.Body = input.Body
	post.CoverImage = input.CoverImage
	post.Status = input.Status

	if err := h.Store.UpdatePost(ctx, post); err != nil {
		h.respondError(c, err, "Post")
		return
	}

	h.recordAudit(c, "post.update", "post", post.ID, strPtr(previous), strPtr(post.Status), map[string]any{"title": post.Title})
	c.JSON(http.StatusOK, gin.H{"message": "Post updated", "post": post})
}

// DeletePost handles DELETE /v1/cms/posts/:id.
func (h *Handlers) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.DeletePost(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Post")
		return
	}
	h.recordAudit(c, "post.delete", "post", id, nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

//
// --- CMS: events ---
//

// ListCMSEvents handles GET /v1/cms/events. Drafts are included.
func (h *Handlers) ListCMSEvents(c *gin.Context) {
	var q eventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	events, total, err := h.Store.ListEvents(c.Request.Context(), store.EventFilter{
		Status:   c.Query("status"),
		Upcoming: q.Upcoming,
		Page:     page,
	})
	if err != nil {
		h.respondError(c, err, "Events")
		return
	}
	c.JSON(http.StatusOK, pageResponse("events", events, total, page))
}

// CreateEvent handles POST /v1/cms/events.
func (h *Handlers) CreateEvent(c *gin.Context) {
	input, ok := bindEvent(c)
	if !ok {
		return
	}

	event := &models.Event{
		AuthorID:    middleware.UserID(c),
		Title:       strings.TrimSpace(input.Title),
		Slug:        input.Slug,
		Description: input.Description,
		Location:    input.Location,
		CoverImage:  input.CoverImage,
		Status:      input.Status,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	if err := h.Store.CreateEvent(c.Request.Context(), event); err != nil {
		h.respondError(c, err, "Event")
		return
	}

	h.recordAudit(c, "event.create", "event", event.ID, nil, strPtr(event.Status), map[string]any{"title": event.Title})
	c.JSON(http.StatusCreated, gin.H{"message": "Event created", "event": event})
}

// UpdateEvent handles PUT /v1/cms/events/:id.
func (h *Handlers) UpdateEvent(c *gin.Context) {
	input, ok := bindEvent(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	event, err := h.Store.GetEvent(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Event")
		return
	}
	previous := event.Status

	event.Title = strings.TrimSpace(input.Title)
	if input.Slug != "" {
		event.Slug = input.Slug
	}
	event.Description = input.Description
	event.Location = input.Location
	event.CoverImage = input.CoverImage
	event.Status = input.Status
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt

	if err := h.Store.UpdateEvent(ctx, event); err != nil {
		h.respondError(c, err, "Event")
		return
	}

	h.recordAudit(c, "event.update", "event", event.ID, strPtr(previous), strPtr(event.Status), map[string]any{"title": event.Title})
	c.JSON(http.StatusOK, gin.H{"message": "Event updated", "event": event})
}

// DeleteEvent handles DELETE /v1/cms/events/:id.
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.DeleteEvent(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Event")
		return
	}
	h.recordAudit(c, "event.delete", "event", id, nil, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
