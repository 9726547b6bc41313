package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/relique/internal/models"
)

//
// --- Favorites ---
//

// AddFavorite marks listingID as a favorite of userID. Adding twice is a
// no-op; created reports whether a new row was written.
func (s *Store) AddFavorite(ctx context.Context, userID, listingID string) (created bool, err error) {
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return false, err
	}
	_, err = s.exec(ctx,
		`INSERT INTO favorites (user_id, listing_id, created_at) VALUES (?, ?, ?)`,
		userID, listingID, s.now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("adding favorite: %w", err)
	}
	return true, nil
}

// RemoveFavorite unmarks a favorite; removed reports whether it existed.
func (s *Store) RemoveFavorite(ctx context.Context, userID, listingID string) (removed bool, err error) {
	res, err := s.exec(ctx, `DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("removing favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListFavorites returns the user's favorite listings, most recently saved
// first. Listings that are no longer published are left out unless the user
// is their seller; the favorite row itself is kept.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]models.Listing, error) {
	rows, err := s.query(ctx,
		`SELECT m.id, m.seller_id, m.title, m.slug, m.description, m.price, m.currency, m.status, m.category, m.brand,
		        m.coa_code, m.images, m.metadata, m.status_note, m.created_at, m.updated_at, m.published_at
		 FROM favorites f
		 JOIN marketplace_items m ON m.id = f.listing_id
		 WHERE f.user_id = ? AND (m.status = ? OR m.seller_id = f.user_id)
		 ORDER BY f.created_at DESC, m.id DESC`, userID, models.ListingPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		l.IsFavorite = true
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// FavoriteSet returns which of listingIDs the user has favorited.
func (s *Store) FavoriteSet(ctx context.Context, userID string, listingIDs []string) (map[string]bool, error) {
	set := map[string]bool{}
	if len(listingIDs) == 0 {
		return set, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(listingIDs)), ", ")
	args := []any{userID}
	for _, id := range listingIDs {
		args = append(args, id)
	}
	rows, err := s.query(ctx,
		`SELECT listing_id FROM favorites WHERE user_id = ? AND listing_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("reading favorites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite id: %w", err)
		}
		set[id] = true
	}
	return set, rows.Err()
}

//
// --- Saved views ---
//

// SaveView creates or replaces the user's view with the same name.
func (s *Store) SaveView(ctx context.Context, v *models.SavedView) error {
	filters, err := jsonText(v.Filters)
	if err != nil {
		return fmt.Errorf("encoding view filters: %w", err)
	}

	return s.WithTx(ctx, func(tx *Store) error {
		now := tx.now()
		var existingID string
		var createdAt sql.NullTime
		err := tx.queryRow(ctx,
			`SELECT id, created_at FROM saved_views WHERE user_id = ? AND name = ?`, v.UserID, v.Name,
		).Scan(&existingID, &createdAt)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			v.ID = newID()
			v.CreatedAt = now
			v.UpdatedAt = now
			_, err = tx.exec(ctx,
				`INSERT INTO saved_views (id, user_id, name, scope, filters, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				v.ID, v.UserID, v.Name, v.Scope, filters, v.CreatedAt, v.UpdatedAt,
			)
		case err == nil:
			v.ID = existingID
			v.CreatedAt = createdAt.Time
			v.UpdatedAt = now
			_, err = tx.exec(ctx,
				`UPDATE saved_views SET scope = ?, filters = ?, updated_at = ? WHERE id = ?`,
				v.Scope, filters, v.UpdatedAt, v.ID,
			)
		}
		if err != nil {
			return fmt.Errorf("saving view: %w", err)
		}
		return nil
	})
}

// ListViews returns the user's saved views, optionally for one scope.
func (s *Store) ListViews(ctx context.Context, userID, scope string) ([]models.SavedView, error) {
	var w whereClause
	w.add("user_id = ?", userID)
	if scope != "" {
		w.add("scope = ?", scope)
	}
	rows, err := s.query(ctx,
		`SELECT id, user_id, name, scope, filters, created_at, updated_at FROM saved_views`+w.String()+` ORDER BY name`,
		w.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer rows.Close()

	views := []models.SavedView{}
	for rows.Next() {
		var v models.SavedView
		var filters sql.NullString
		if err := rows.Scan(&v.ID, &v.UserID, &v.Name, &v.Scope, &filters, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning view: %w", err)
		}
		v.Filters = map[string]any{}
		if err := fromJSONText(filters, &v.Filters); err != nil {
			return nil, fmt.Errorf("decoding view filters: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// DeleteView removes a saved view by name.
func (s *Store) DeleteView(ctx context.Context, userID, name string) error {
	res, err := s.exec(ctx, `DELETE FROM saved_views WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return fmt.Errorf("deleting view: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

//
// --- Drafts ---
//

// PutDraft stores payload under key, replacing any previous draft.
func (s *Store) PutDraft(ctx context.Context, userID, key string, payload json.RawMessage) (*models.Draft, error) {
	d := &models.Draft{Key: key, Payload: payload, UpdatedAt: s.now()}
	err := s.WithTx(ctx, func(tx *Store) error {
		res, err := tx.exec(ctx,
			`UPDATE drafts SET payload = ?, updated_at = ? WHERE user_id = ? AND draft_key = ?`,
			string(payload), d.UpdatedAt, userID, key,
		)
		if err != nil {
			return fmt.Errorf("updating draft: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		_, err = tx.exec(ctx,
			`INSERT INTO drafts (user_id, draft_key, payload, updated_at) VALUES (?, ?, ?, ?)`,
			userID, key, string(payload), d.UpdatedAt,
		)
		if err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("inserting draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDraft returns one draft.
func (s *Store) GetDraft(ctx context.Context, userID, key string) (*models.Draft, error) {
	var d models.Draft
	var payload string
	err := s.queryRow(ctx,
		`SELECT draft_key, payload, updated_at FROM drafts WHERE user_id = ? AND draft_key = ?`, userID, key,
	).Scan(&d.Key, &payload, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	d.Payload = json.RawMessage(payload)
	return &d, nil
}

// ListDrafts returns the user's drafts, most recently updated first.
func (s *Store) ListDrafts(ctx context.Context, userID string) ([]models.Draft, error) {
	rows, err := s.query(ctx,
		`SELECT draft_key, payload, updated_at FROM drafts WHERE user_id = ? ORDER BY updated_at DESC, draft_key`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.Draft{}
	for rows.Next() {
		var d models.Draft
		var payload string
		if err := rows.Scan(&d.Key, &payload, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		d.Payload = json.RawMessage(payload)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// DeleteDraft removes one draft.
func (s *Store) DeleteDraft(ctx context.Context, userID, key string) error {
	res, err := s.exec(ctx, `DELETE FROM drafts WHERE user_id = ? AND draft_key = ?`, userID, key)
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

//
// --- Search history ---
//

// RecordSearch puts query at the front of the user's history. A repeated
// query (case-insensitive) moves to the front instead of duplicating, and
// the history is capped at limit entries.
func (s *Store) RecordSearch(ctx context.Context, userID, query string, limit int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	norm := strings.ToLower(strings.Join(strings.Fields(query), " "))

	return s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.exec(ctx, `DELETE FROM search_history WHERE user_id = ? AND query_norm = ?`, userID, norm); err != nil {
			return fmt.Errorf("de-duplicating search: %w", err)
		}
		_, err := tx.exec(ctx,
			`INSERT INTO search_history (id, user_id, query, query_norm, created_at) VALUES (?, ?, ?, ?, ?)`,
			newID(), userID, query, norm, tx.now(),
		)
		if err != nil {
			return fmt.Errorf("recording search: %w", err)
		}
		return tx.pruneUserRows(ctx, "search_history", userID, limit)
	})
}

// ListSearches returns the user's search history, newest first.
func (s *Store) ListSearches(ctx context.Context, userID string) ([]models.SearchEntry, error) {
	rows, err := s.query(ctx,
		`SELECT id, query, created_at FROM search_history WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	entries := []models.SearchEntry{}
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearSearches deletes the user's search history.
func (s *Store) ClearSearches(ctx context.Context, userID string) error {
	if _, err := s.exec(ctx, `DELETE FROM search_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing searches: %w", err)
	}
	return nil
}
