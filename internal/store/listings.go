package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/relique/internal/models"
	"github.com/gosimple/slug"
)

const listingColumns = `id, seller_id, title, slug, description, price, currency, status, category, brand,
	coa_code, images, metadata, status_note, created_at, updated_at, published_at`

func scanListing(row interface{ Scan(...any) error }) (*models.Listing, error) {
	var l models.Listing
	var description, category, brand, coa, images, metadata, note sql.NullString
	var publishedAt sql.NullTime
	if err := row.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Slug, &description, &l.Price, &l.Currency, &l.Status,
		&category, &brand, &coa, &images, &metadata, &note, &l.CreatedAt, &l.UpdatedAt, &publishedAt,
	); err != nil {
		return nil, err
	}
	l.Description = description.String
	l.Category = category.String
	l.Brand = brand.String
	l.COACode = stringPtr(coa)
	l.StatusNote = stringPtr(note)
	l.PublishedAt = timePtr(publishedAt)

	// Always initialize collections to avoid "null" in JSON
	l.Images = []string{}
	l.Metadata = map[string]any{}
	if err := fromJSONText(images, &l.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	if err := fromJSONText(metadata, &l.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return &l, nil
}

// uniqueSlug derives a slug from title that is free in table. table is
// always a constant from this package.
func (s *Store) uniqueSlug(ctx context.Context, table, title, excludeID string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		var n int
		err := s.queryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE slug = ? AND id <> ?`, candidate, excludeID).Scan(&n)
		if err != nil {
			return "", fmt.Errorf("checking slug: %w", err)
		}
		if n == 0 {
			return candidate, nil
		}
		if i > 50 {
			return base + "-" + newID()[24:], nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateListing inserts l, filling ID, slug and timestamps.
func (s *Store) CreateListing(ctx context.Context, l *models.Listing) error {
	slugValue, err := s.uniqueSlug(ctx, "marketplace_items", l.Title, "")
	if err != nil {
		return err
	}
	l.ID = newID()
	l.Slug = slugValue
	l.CreatedAt = s.now()
	l.UpdatedAt = l.CreatedAt
	if l.Currency == "" {
		l.Currency = "USD"
	}
	if l.Status == models.ListingPublished && l.PublishedAt == nil {
		at := l.CreatedAt
		l.PublishedAt = &at
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	if l.Metadata == nil {
		l.Metadata = map[string]any{}
	}

	images, err := jsonText(l.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}
	metadata, err := jsonText(l.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	_, err = s.exec(ctx,
		`INSERT INTO marketplace_items (`+listingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SellerID, l.Title, l.Slug, l.Description, l.Price, l.Currency, l.Status, l.Category, l.Brand,
		nullString(l.COACode), images, metadata, nullString(l.StatusNote), l.CreatedAt, l.UpdatedAt, nullTime(l.PublishedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating listing: %w", err)
	}
	return nil
}

// GetListing returns a listing by ID.
func (s *Store) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	l, err := scanListing(s.queryRow(ctx, `SELECT `+listingColumns+` FROM marketplace_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return l, nil
}

// GetListingBySlug returns a listing by slug.
func (s *Store) GetListingBySlug(ctx context.Context, slugValue string) (*models.Listing, error) {
	l, err := scanListing(s.queryRow(ctx, `SELECT `+listingColumns+` FROM marketplace_items WHERE slug = ?`, slugValue))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting listing by slug: %w", err)
	}
	return l, nil
}

// UpdateListing writes the editable fields of l back and bumps updated_at.
// Status changes by staff go through SetListingStatus instead.
func (s *Store) UpdateListing(ctx context.Context, l *models.Listing) error {
	images, err := jsonText(l.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}
	metadata, err := jsonText(l.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	l.UpdatedAt = s.now()
	if l.Status == models.ListingPublished && l.PublishedAt == nil {
		at := l.UpdatedAt
		l.PublishedAt = &at
	}

	res, err := s.exec(ctx,
		`UPDATE marketplace_items
		 SET title = ?, description = ?, price = ?, currency = ?, status = ?, category = ?, brand = ?,
		     coa_code = ?, images = ?, metadata = ?, updated_at = ?, published_at = ?
		 WHERE id = ?`,
		l.Title, l.Description, l.Price, l.Currency, l.Status, l.Category, l.Brand,
		nullString(l.COACode), images, metadata, l.UpdatedAt, nullTime(l.PublishedAt), l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListing removes a listing owned by sellerID.
func (s *Store) DeleteListing(ctx context.Context, id, sellerID string) error {
	return s.WithTx(ctx, func(tx *Store) error {
		res, err := tx.exec(ctx, `DELETE FROM marketplace_items WHERE id = ? AND seller_id = ?`, id, sellerID)
		if err != nil {
			return fmt.Errorf("deleting listing: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.exec(ctx, `DELETE FROM favorites WHERE listing_id = ?`, id); err != nil {
			return fmt.Errorf("deleting listing favorites: %w", err)
		}
		return nil
	})
}

// SetListingStatus moves a listing to status to. When from is non-empty the
// listing must currently be in that status, otherwise ErrConflict. The
// listing before the change is returned alongside the updated one.
func (s *Store) SetListingStatus(ctx context.Context, id, from, to string, note *string) (before, after *models.Listing, err error) {
	err = s.WithTx(ctx, func(tx *Store) error {
		current, err := tx.GetListing(ctx, id)
		if err != nil {
			return err
		}
		if from != "" && current.Status != from {
			return ErrConflict
		}

		updated := *current
		updated.Status = to
		updated.StatusNote = note
		updated.UpdatedAt = tx.now()
		if to == models.ListingPublished && updated.PublishedAt == nil {
			at := updated.UpdatedAt
			updated.PublishedAt = &at
		}

		_, err = tx.exec(ctx,
			`UPDATE marketplace_items SET status = ?, status_note = ?, updated_at = ?, published_at = ? WHERE id = ?`,
			updated.Status, nullString(updated.StatusNote), updated.UpdatedAt, nullTime(updated.PublishedAt), id,
		)
		if err != nil {
			return fmt.Errorf("setting listing status: %w", err)
		}
		before, after = current, &updated
		return nil
	})
	return before, after, err
}

// Listing sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ListingFilter narrows ListListings. Zero values mean "no filter".
type ListingFilter struct {
	Query    string
	Status   string
	Category string
	Brand    string
	SellerID string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page
}

// ListListings returns one page of listings matching f plus the total
// number of matches.
func (s *Store) ListListings(ctx context.Context, f ListingFilter) ([]models.Listing, int, error) {
	page := f.Page.Normalize()

	var w whereClause
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.SellerID != "" {
		w.add("seller_id = ?", f.SellerID)
	}
	if f.Category != "" {
		w.add("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.Brand != "" {
		w.add("LOWER(brand) = ?", strings.ToLower(f.Brand))
	}
	if f.MinPrice != nil {
		w.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := likePattern(q)
		w.add("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(brand) LIKE ? ESCAPE '!')", pattern, pattern, pattern)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM marketplace_items`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting listings: %w", err)
	}

	order := " ORDER BY created_at DESC, id DESC"
	switch f.Sort {
	case SortPriceAsc:
		order = " ORDER BY price ASC, id ASC"
	case SortPriceDesc:
		order = " ORDER BY price DESC, id DESC"
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx,
		`SELECT `+listingColumns+` FROM marketplace_items`+w.String()+order+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	return listings, total, rows.Err()
}

// CountListingsByStatus returns the number of listings per status; every
// status is present in the map.
func (s *Store) CountListingsByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(models.ListingStatuses))
	for _, st := range models.ListingStatuses {
		counts[st] = 0
	}

	rows, err := s.query(ctx, `SELECT status, COUNT(*) FROM marketplace_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting listings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning listing count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

// ListingFacets returns the categories and brands in use by published
// listings, most used first.
func (s *Store) ListingFacets(ctx context.Context) (categories, brands []models.Facet, err error) {
	if categories, err = s.facet(ctx, "category"); err != nil {
		return nil, nil, err
	}
	if brands, err = s.facet(ctx, "brand"); err != nil {
		return nil, nil, err
	}
	return categories, brands, nil
}

// facet counts published listings per value of column, which is always a
// constant from this file. Values are grouped case-insensitively, matching
// the filters, and reported by their first spelling in sort order.
func (s *Store) facet(ctx context.Context, column string) ([]models.Facet, error) {
	rows, err := s.query(ctx,
		`SELECT MIN(`+column+`), COUNT(*) FROM marketplace_items
		 WHERE status = ? AND `+column+` IS NOT NULL AND `+column+` <> ''
		 GROUP BY LOWER(`+column+`)
		 ORDER BY COUNT(*) DESC, LOWER(`+column+`)`,
		models.ListingPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("counting %s facets: %w", column, err)
	}
	defer rows.Close()

	facets := []models.Facet{}
	for rows.Next() {
		var f models.Facet
		if err := rows.Scan(&f.Value, &f.Count); err != nil {
			return nil, fmt.Errorf("scanning %s facet: %w", column, err)
		}
		facets = append(facets, f)
	}
	return facets, rows.Err()
}
