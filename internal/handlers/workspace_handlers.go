package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// The client portal used to keep this state in browser storage, keyed by
// user. Everything here is scoped to the caller.

//
// --- Activity ---
//

// ListActivity handles GET /v1/me/activity.
func (h *Handlers) ListActivity(c *gin.Context) {
	limit := h.Config.ActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		if n < limit {
			limit = n
		}
	}
	items, err := h.Store.ListActivity(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		h.respondError(c, err, "Activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}

//
// --- Favorites ---
//

// ListFavorites handles GET /v1/me/favorites.
func (h *Handlers) ListFavorites(c *gin.Context) {
	listings, err := h.Store.ListFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "Favorites")
		return
	}
	for i := range listings {
		listings[i].IsFavorite = true
	}
	c.JSON(http.StatusOK, gin.H{"favorites": listings})
}

// AddFavorite handles PUT /v1/me/favorites/:listingId. Repeating the call
// is harmless: 201 the first time, 200 afterwards.
func (h *Handlers) AddFavorite(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	listingID := c.Param("listingId")

	// 1. --- The listing must be visible to the caller ---
	listing, err := h.Store.GetListing(ctx, listingID)
	if err == nil && listing.Status != models.ListingPublished && listing.SellerID != userID {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err, "Listing")
		return
	}

	// 2. --- Save ---
	created, err := h.Store.AddFavorite(ctx, userID, listingID)
	if err != nil {
		h.respondError(c, err, "Favorite")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.recordActivity(c, "favorite.add", "listing", listingID, listing.Title)
	}
	c.JSON(status, gin.H{"listingId": listingID, "favorite": true})
}

// RemoveFavorite handles DELETE /v1/me/favorites/:listingId.
func (h *Handlers) RemoveFavorite(c *gin.Context) {
	listingID := c.Param("listingId")
	removed, err := h.Store.RemoveFavorite(c.Request.Context(), middleware.UserID(c), listingID)
	if err != nil {
		h.respondError(c, err, "Favorite")
		return
	}
	if removed {
		h.recordActivity(c, "favorite.remove", "listing", listingID, "")
	}
	c.JSON(http.StatusOK, gin.H{"listingId": listingID, "favorite": false, "removed": removed})
}

//
// --- Saved views ---
//

// SaveViewInput is the body of PUT /v1/me/views.
type SaveViewInput struct {
	Name    string         `json:"name" binding:"required,max=100"`
	Scope   string         `json:"scope" binding:"required,storagekey"`
	Filters map[string]any `json:"filters"`
}

// ListViews handles GET /v1/me/views (optional ?scope=).
func (h *Handlers) ListViews(c *gin.Context) {
	views, err := h.Store.ListViews(c.Request.Context(), middleware.UserID(c), c.Query("scope"))
	if err != nil {
		h.respondError(c, err, "Views")
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

// SaveView handles PUT /v1/me/views. A view with the same name is replaced.
func (h *Handlers) SaveView(c *gin.Context) {
	var input SaveViewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view := &models.SavedView{
		UserID:  middleware.UserID(c),
		Name:    input.Name,
		Scope:   input.Scope,
		Filters: input.Filters,
	}
	if view.Filters == nil {
		view.Filters = map[string]any{}
	}
	if err := h.Store.SaveView(c.Request.Context(), view); err != nil {
		h.respondError(c, err, "View")
		return
	}
	h.recordActivity(c, "view.save", "saved_view", view.ID, view.Name)
	c.JSON(http.StatusOK, gin.H{"view": view})
}

// DeleteView handles DELETE /v1/me/views/:name.
func (h *Handlers) DeleteView(c *gin.Context) {
	name := c.Param("name")
	if err := h.Store.DeleteView(c.Request.Context(), middleware.UserID(c), name); err != nil {
		h.respondError(c, err, "View")
		return
	}
	h.recordActivity(c, "view.delete", "saved_view", "", name)
	c.JSON(http.StatusOK, gin.H{"message": "View deleted"})
}

//
// --- Drafts ---
//

// PutDraftInput is the body of PUT /v1/me/drafts/:key.
type PutDraftInput struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// draftKey reads and checks the :key parameter; it writes the 400 itself.
func draftKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if !validKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft key"})
		return "", false
	}
	return key, true
}

// ListDrafts handles GET /v1/me/drafts.
func (h *Handlers) ListDrafts(c *gin.Context) {
	drafts, err := h.Store.ListDrafts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "Drafts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// GetDraft handles GET /v1/me/drafts/:key.
func (h *Handlers) GetDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	draft, err := h.Store.GetDraft(c.Request.Context(), middleware.UserID(c), key)
	if err != nil {
		h.respondError(c, err, "Draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// PutDraft handles PUT /v1/me/drafts/:key.
func (h *Handlers) PutDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	var input PutDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !json.Valid(input.Payload) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload must be valid JSON"})
		return
	}
	draft, err := h.Store.PutDraft(c.Request.Context(), middleware.UserID(c), key, input.Payload)
	if err != nil {
		h.respondError(c, err, "Draft")
		return
	}
	h.recordActivity(c, "draft.save", "draft", key, "")
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// DeleteDraft handles DELETE /v1/me/drafts/:key.
func (h *Handlers) DeleteDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteDraft(c.Request.Context(), middleware.UserID(c), key); err != nil {
		h.respondError(c, err, "Draft")
		return
	}
	h.recordActivity(c, "draft.delete", "draft", key, "")
	c.JSON(http.StatusOK, gin.H{"message": "Draft deleted"})
}

//
// --- Search history ---
//

// ListSearchHistory handles GET /v1/me/search-history.
func (h *Handlers) ListSearchHistory(c *gin.Context) {
	entries, err := h.Store.ListSearches(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "Search history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": entries})
}

// ClearSearchHistory handles DELETE /v1/me/search-history.
func (h *Handlers) ClearSearchHistory(c *gin.Context) {
	if err := h.Store.ClearSearches(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.respondError(c, err, "Search history")
		return
	}
	h.recordActivity(c, "search.clear", "search_history", "", "")
	c.JSON(http.StatusOK, gin.H{"message": "Search history cleared"})
}
