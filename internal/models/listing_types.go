package models

import "time"

// Listing statuses. Admins may move a listing to any of these; sellers only
// to the OwnerStatuses subset.
const (
	ListingDraft       = "draft"
	ListingPending     = "pending"
	ListingPublished   = "published"
	ListingSuspended   = "suspended"
	ListingUnpublished = "unpublished"
	ListingArchived    = "archived"
)

// ListingStatuses lists every status in display order.
var ListingStatuses = []string{
	ListingDraft, ListingPending, ListingPublished,
	ListingSuspended, ListingUnpublished, ListingArchived,
}

// ValidListingStatus reports enum membership.
func ValidListingStatus(s string) bool {
	for _, v := range ListingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// OwnerMayEditPrice reports whether a seller can still change the price of a
// listing in status s. Once a listing went live the price is fixed for them.
func OwnerMayEditPrice(s string) bool {
	return s == ListingDraft || s == ListingPending || s == ListingUnpublished
}

// Listing is the model for the 'marketplace_items' table.
type Listing struct {
	ID          string         `json:"id" db:"id"`
	SellerID    string         `json:"sellerId" db:"seller_id"`
	Title       string         `json:"title" db:"title"`
	Slug        string         `json:"slug" db:"slug"`
	Description string         `json:"description" db:"description"`
	Price       float64        `json:"price" db:"price"`
	Currency    string         `json:"currency" db:"currency"`
	Status      string         `json:"status" db:"status"`
	Category    string         `json:"category,omitempty" db:"category"`
	Brand       string         `json:"brand,omitempty" db:"brand"`
	COACode     *string        `json:"coaCode,omitempty" db:"coa_code"`
	Images      []string       `json:"images"`
	Metadata    map[string]any `json:"metadata"`
	StatusNote  *string        `json:"statusNote,omitempty" db:"status_note"`

	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"`

	// Populated per request, not stored.
	IsFavorite bool `json:"isFavorite,omitempty" db:"-"`
}

// Facet is one distinct category or brand with the number of published
// listings using it.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
