package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// --- Inputs ---

// CreateListingInput is the body of POST /v1/me/listings.
type CreateListingInput struct {
	Title       string         `json:"title" binding:"required,max=200"`
	Description string         `json:"description" binding:"max=10000"`
	Price       *float64       `json:"price" binding:"required,gte=0"`
	Currency    string         `json:"currency" binding:"omitempty,len=3,alpha"`
	Category    string         `json:"category" binding:"max=100"`
	Brand       string         `json:"brand" binding:"max=100"`
	COACode     *string        `json:"coaCode" binding:"omitempty,verifycode"`
	Images      []string       `json:"images" binding:"max=12,dive,url"`
	Metadata    map[string]any `json:"metadata"`
	Status      string         `json:"status" binding:"omitempty,oneof=draft pending"`
}

// UpdateListingInput is the body of PUT /v1/me/listings/:id. Only the fields
// that are present are changed.
type UpdateListingInput struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string        `json:"description" binding:"omitempty,max=10000"`
	Price       *float64       `json:"price" binding:"omitempty,gte=0"`
	Currency    *string        `json:"currency" binding:"omitempty,len=3,alpha"`
	Category    *string        `json:"category" binding:"omitempty,max=100"`
	Brand       *string        `json:"brand" binding:"omitempty,max=100"`
	COACode     *string        `json:"coaCode" binding:"omitempty,verifycode"`
	Images      []string       `json:"images" binding:"omitempty,max=12,dive,url"`
	Metadata    map[string]any `json:"metadata"`
	Status      *string        `json:"status" binding:"omitempty,oneof=draft pending unpublished"`
}

// UpdateListingStatusInput is the body of PATCH /v1/admin/listings/:id/status.
type UpdateListingStatusInput struct {
	Status string `json:"status" binding:"required,oneof=draft pending published suspended unpublished archived"`
	Reason string `json:"reason" binding:"required_if=Status suspended,max=500"`
}

type listingQuery struct {
	pageQuery
	Q        string   `form:"q" binding:"max=200"`
	Status   string   `form:"status"`
	Category string   `form:"category"`
	Brand    string   `form:"brand"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc"`
}

// bindListingQuery parses the list filters shared by the public, owner and
// admin listing endpoints. It writes the 400 itself.
func bindListingQuery(c *gin.Context) (store.ListingFilter, bool) {
	var q listingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return store.ListingFilter{}, false
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_price cannot exceed max_price"})
		return store.ListingFilter{}, false
	}
	if q.Status != "" && !models.ValidListingStatus(q.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return store.ListingFilter{}, false
	}
	return store.ListingFilter{
		Query:    strings.TrimSpace(q.Q),
		Status:   q.Status,
		Category: q.Category,
		Brand:    q.Brand,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Sort:     q.Sort,
		Page:     q.toPage(),
	}, true
}

// markFavorites sets IsFavorite on listings the caller saved.
func (h *Handlers) markFavorites(c *gin.Context, listings []models.Listing) {
	userID := middleware.UserID(c)
	if userID == "" || len(listings) == 0 {
		return
	}
	ids := make([]string, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	set, err := h.Store.FavoriteSet(c.Request.Context(), userID, ids)
	if err != nil {
		h.Logger.Warn("loading favorites", "error", err, "user_id", userID)
		return
	}
	for i := range listings {
		listings[i].IsFavorite = set[listings[i].ID]
	}
}

//
// --- Public marketplace ---
//

// ListPublicListings handles GET /v1/listings. Only published listings are
// visible; the status filter is ignored.
func (h *Handlers) ListPublicListings(c *gin.Context) {
	// 1. --- Parse filters ---
	filter, ok := bindListingQuery(c)
	if !ok {
		return
	}
	filter.Status = models.ListingPublished

	// 2. --- Query ---
	listings, total, err := h.Store.ListListings(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Listings")
		return
	}
	h.markFavorites(c, listings)

	// 3. --- Remember the search for signed-in users ---
	if userID := middleware.UserID(c); userID != "" && filter.Query != "" {
		if err := h.Store.RecordSearch(c.Request.Context(), userID, filter.Query, h.Config.SearchHistoryLimit); err != nil {
			h.Logger.Warn("recording search", "error", err, "user_id", userID)
		}
	}

	c.JSON(http.StatusOK, pageResponse("listings", listings, total, filter.Page))
}

// GetPublicListing handles GET /v1/listings/:id. The parameter may be an id
// or a slug.
func (h *Handlers) GetPublicListing(c *gin.Context) {
	listing, err := h.findListing(c, c.Param("id"))
	if err == nil && listing.Status != models.ListingPublished {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err, "Listing")
		return
	}

	one := []models.Listing{*listing}
	h.markFavorites(c, one)
	c.JSON(http.StatusOK, gin.H{"listing": one[0]})
}

func (h *Handlers) findListing(c *gin.Context, idOrSlug string) (*models.Listing, error) {
	ctx := c.Request.Context()
	listing, err := h.Store.GetListing(ctx, idOrSlug)
	if errors.Is(err, store.ErrNotFound) {
		return h.Store.GetListingBySlug(ctx, idOrSlug)
	}
	return listing, err
}

//
// --- Client portal: my listings ---
//

// ListMyListings handles GET /v1/me/listings.
func (h *Handlers) ListMyListings(c *gin.Context) {
	filter, ok := bindListingQuery(c)
	if !ok {
		return
	}
	filter.SellerID = middleware.UserID(c)

	listings, total, err := h.Store.ListListings(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Listings")
		return
	}
	c.JSON(http.StatusOK, pageResponse("listings", listings, total, filter.Page))
}

// CreateListing handles POST /v1/me/listings.
func (h *Handlers) CreateListing(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Build the listing ---
	listing := &models.Listing{
		SellerID:    middleware.UserID(c),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       *input.Price,
		Currency:    strings.ToUpper(input.Currency),
		Status:      input.Status,
		Category:    input.Category,
		Brand:       input.Brand,
		Images:      input.Images,
		Metadata:    input.Metadata,
	}
	if listing.Status == "" {
		listing.Status = models.ListingDraft
	}
	if input.COACode != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.COACode))
		listing.COACode = &code
	}

	// 3. --- Save ---
	if err := h.Store.CreateListing(c.Request.Context(), listing); err != nil {
		h.respondError(c, err, "Listing")
		return
	}

	h.recordActivity(c, "listing.create", "listing", listing.ID, listing.Title)
	c.JSON(http.StatusCreated, gin.H{"message": "Listing created successfully", "listing": listing})
}

// getOwnedListing loads a listing and checks that the caller is its seller.
// Other sellers' listings are reported as not found.
func (h *Handlers) getOwnedListing(c *gin.Context) (*models.Listing, bool) {
	listing, err := h.Store.GetListing(c.Request.Context(), c.Param("id"))
	if err == nil && listing.SellerID != middleware.UserID(c) {
		err = store.ErrNotFound
	}
	if err != nil {
		h.respondError(c, err, "Listing")
		return nil, false
	}
	return listing, true
}

// GetMyListing handles GET /v1/me/listings/:id.
func (h *Handlers) GetMyListing(c *gin.Context) {
	listing, ok := h.getOwnedListing(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// UpdateMyListing handles PUT /v1/me/listings/:id.
func (h *Handlers) UpdateMyListing(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input UpdateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Load & check ownership ---
	listing, ok := h.getOwnedListing(c)
	if !ok {
		return
	}

	// 3. --- Business rules ---
	// Suspended and archived listings are under moderation.
	if listing.Status == models.ListingSuspended || listing.Status == models.ListingArchived {
		c.JSON(http.StatusConflict, gin.H{"error": "This listing is locked by moderation and cannot be edited"})
		return
	}
	if input.Price != nil && *input.Price != listing.Price && !models.OwnerMayEditPrice(listing.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "Price cannot be changed while the listing is " + listing.Status})
		return
	}

	// 4. --- Apply changes ---
	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if input.Currency != nil {
		listing.Currency = strings.ToUpper(*input.Currency)
	}
	if input.Category != nil {
		listing.Category = *input.Category
	}
	if input.Brand != nil {
		listing.Brand = *input.Brand
	}
	if input.COACode != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.COACode))
		listing.COACode = &code
	}
	if input.Images != nil {
		listing.Images = input.Images
	}
	if input.Metadata != nil {
		listing.Metadata = input.Metadata
	}
	previous := listing.Status
	if input.Status != nil {
		listing.Status = *input.Status
	}

	// 5. --- Save ---
	if err := h.Store.UpdateListing(c.Request.Context(), listing); err != nil {
		h.respondError(c, err, "Listing")
		return
	}

	summary := listing.Title
	if previous != listing.Status {
		summary = previous + " -> " + listing.Status
	}
	h.recordActivity(c, "listing.update", "listing", listing.ID, summary)
	c.JSON(http.StatusOK, gin.H{"message": "Listing updated successfully", "listing": listing})
}

// DeleteMyListing handles DELETE /v1/me/listings/:id.
func (h *Handlers) DeleteMyListing(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.DeleteListing(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.respondError(c, err, "Listing")
		return
	}
	h.recordActivity(c, "listing.delete", "listing", id, "")
	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

//
// --- Admin: moderation ---
//

// AdminListListings handles GET /v1/admin/listings. Any status is visible.
func (h *Handlers) AdminListListings(c *gin.Context) {
	filter, ok := bindListingQuery(c)
	if !ok {
		return
	}
	listings, total, err := h.Store.ListListings(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Listings")
		return
	}
	c.JSON(http.StatusOK, pageResponse("listings", listings, total, filter.Page))
}

// UpdateListingStatus handles PATCH /v1/admin/listings/:id/status.
func (h *Handlers) UpdateListingStatus(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input UpdateListingStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var note *string
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		note = &reason
	}
	h.moveListing(c, "", input.Status, note, "listing.status")
}

// ApproveListing handles PATCH /v1/admin/listings/:id/approve. Only pending
// listings can be approved.
func (h *Handlers) ApproveListing(c *gin.Context) {
	h.moveListing(c, models.ListingPending, models.ListingPublished, nil, "listing.approve")
}

// moveListing applies an admin status change, audits it and tells the seller.
func (h *Handlers) moveListing(c *gin.Context, from, to string, note *string, action string) {
	before, after, err := h.Store.SetListingStatus(c.Request.Context(), c.Param("id"), from, to, note)
	if errors.Is(err, store.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Listing is not " + from})
		return
	}
	if err != nil {
		h.respondError(c, err, "Listing")
		return
	}

	payload := map[string]any{"title": after.Title}
	if note != nil {
		payload["reason"] = *note
	}
	h.recordAudit(c, action, "listing", after.ID, strPtr(before.Status), strPtr(after.Status), payload)

	if before.Status != after.Status {
		msg := "Your listing '" + after.Title + "' is now " + after.Status
		if note != nil {
			msg += ": " + *note
		}
		h.notify(c.Request.Context(), after.SellerID, msg, "/me/listings/"+after.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing status updated", "listing": after})
}
