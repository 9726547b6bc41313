package models

import (
	"encoding/json"
	"time"
)

// Favorite marks a listing a user saved.
type Favorite struct {
	UserID    string    `json:"userId" db:"user_id"`
	ListingID string    `json:"listingId" db:"listing_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SavedView is a named set of list filters (a "preset") for one screen.
type SavedView struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"userId" db:"user_id"`
	Name      string         `json:"name" db:"name"`
	Scope     string         `json:"scope" db:"scope"`
	Filters   map[string]any `json:"filters" db:"filters"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// Draft is an unfinished form the client portal keeps server side.
type Draft struct {
	Key       string          `json:"key" db:"draft_key"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// SearchEntry is one remembered marketplace search.
type SearchEntry struct {
	ID        string    `json:"id" db:"id"`
	Query     string    `json:"query" db:"query"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
