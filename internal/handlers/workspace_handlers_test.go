package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/01moynul/relique/internal/models"
	"github.com/gin-gonic/gin"
)

func TestFavoriteTogglePersists(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("fan@example.com")
	_, seller := s.staff("seller@example.com", models.RoleClient)
	l := s.publishedListing(seller, "Patek Calatrava", "watches", 18000)

	path := "/v1/me/favorites/" + l.ID
	expect(t, s.do(http.MethodPut, path, token, nil), http.StatusCreated, nil)
	expect(t, s.do(http.MethodPut, path, token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodPut, "/v1/me/favorites/does-not-exist", token, nil), http.StatusNotFound, nil)

	var favs struct {
		Favorites []models.Listing `json:"favorites"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/favorites", token, nil), http.StatusOK, &favs)
	if len(favs.Favorites) != 1 || favs.Favorites[0].ID != l.ID || !favs.Favorites[0].IsFavorite {
		t.Fatalf("unexpected favorites %+v", favs.Favorites)
	}

	// The public list is personalised for the signed-in user only.
	var page listingPage
	expect(t, s.do(http.MethodGet, "/v1/listings", token, nil), http.StatusOK, &page)
	if len(page.Listings) != 1 || !page.Listings[0].IsFavorite {
		t.Errorf("favorite flag missing: %+v", page.Listings)
	}
	var anonymous listingPage
	expect(t, s.do(http.MethodGet, "/v1/listings", "", nil), http.StatusOK, &anonymous)
	if len(anonymous.Listings) != 1 || anonymous.Listings[0].IsFavorite {
		t.Errorf("anonymous list has favorite flag")
	}

	var removed struct {
		Removed bool `json:"removed"`
	}
	expect(t, s.do(http.MethodDelete, path, token, nil), http.StatusOK, &removed)
	if !removed.Removed {
		t.Errorf("first delete did not remove")
	}
	expect(t, s.do(http.MethodDelete, path, token, nil), http.StatusOK, &removed)
	if removed.Removed {
		t.Errorf("second delete reported a removal")
	}
	expect(t, s.do(http.MethodGet, "/v1/me/favorites", token, nil), http.StatusOK, &favs)
	if len(favs.Favorites) != 0 {
		t.Errorf("favorites not cleared: %+v", favs.Favorites)
	}
}

func TestFavoriteHiddenListing(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("fan@example.com")
	seller, sellerID := s.register("seller@example.com")
	draft := &models.Listing{SellerID: sellerID, Title: "Work in progress", Status: models.ListingDraft}
	if err := s.store.CreateListing(t.Context(), draft); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	expect(t, s.do(http.MethodPut, "/v1/me/favorites/"+draft.ID, token, nil), http.StatusNotFound, nil)
	expect(t, s.do(http.MethodPut, "/v1/me/favorites/"+draft.ID, seller, nil), http.StatusCreated, nil)
}

func TestFavoritesDropSuspendedListing(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("fan@example.com")
	admin, _ := s.staff("admin@example.com", models.RoleAdmin)
	_, seller := s.staff("seller@example.com", models.RoleClient)
	l := s.publishedListing(seller, "Rolex Submariner", "watches", 9000)

	expect(t, s.do(http.MethodPut, "/v1/me/favorites/"+l.ID, token, nil), http.StatusCreated, nil)
	body := gin.H{"status": "suspended", "reason": "seller under review"}
	expect(t, s.do(http.MethodPatch, "/v1/admin/listings/"+l.ID+"/status", admin, body), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, "/v1/listings/"+l.ID, token, nil), http.StatusNotFound, nil)

	var favs struct {
		Favorites []models.Listing `json:"favorites"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/favorites", token, nil), http.StatusOK, &favs)
	if len(favs.Favorites) != 0 {
		t.Errorf("suspended listing still in favorites: %+v", favs.Favorites)
	}
}

func TestSaveViewTwiceDoesNotDuplicate(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("curator@example.com")

	first := gin.H{"name": "Cheap watches", "scope": "marketplace", "filters": gin.H{"category": "watches", "max_price": 500}}
	second := gin.H{"name": "Cheap watches", "scope": "marketplace", "filters": gin.H{"category": "watches", "max_price": 300}}
	expect(t, s.do(http.MethodPut, "/v1/me/views", token, first), http.StatusOK, nil)
	expect(t, s.do(http.MethodPut, "/v1/me/views", token, second), http.StatusOK, nil)
	expect(t, s.do(http.MethodPut, "/v1/me/views", token, gin.H{"name": "Other", "scope": "admin listings"}), http.StatusBadRequest, nil)

	var views struct {
		Views []models.SavedView `json:"views"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/views?scope=marketplace", token, nil), http.StatusOK, &views)
	if len(views.Views) != 1 {
		t.Fatalf("expected one view, got %d", len(views.Views))
	}
	if got := views.Views[0].Filters["max_price"]; got != float64(300) {
		t.Errorf("max_price = %v, want 300", got)
	}

	expect(t, s.do(http.MethodGet, "/v1/me/views?scope=admin", token, nil), http.StatusOK, &views)
	if len(views.Views) != 0 {
		t.Errorf("scope filter ignored")
	}

	expect(t, s.do(http.MethodDelete, "/v1/me/views/Cheap%20watches", token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodDelete, "/v1/me/views/Cheap%20watches", token, nil), http.StatusNotFound, nil)
}

func TestDraftsUpsert(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("writer@example.com")
	other, _ := s.register("other@example.com")

	path := "/v1/me/drafts/consign-form"
	expect(t, s.do(http.MethodPut, path, token, gin.H{"payload": gin.H{"step": 1}}), http.StatusOK, nil)
	expect(t, s.do(http.MethodPut, path, token, gin.H{"payload": gin.H{"step": 2}}), http.StatusOK, nil)
	expect(t, s.do(http.MethodPut, path, token, gin.H{}), http.StatusBadRequest, nil)
	expect(t, s.do(http.MethodPut, "/v1/me/drafts/bad%20key", token, gin.H{"payload": 1}), http.StatusBadRequest, nil)

	var list struct {
		Drafts []models.Draft `json:"drafts"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/drafts", token, nil), http.StatusOK, &list)
	if len(list.Drafts) != 1 {
		t.Fatalf("expected one draft, got %d", len(list.Drafts))
	}

	var one struct {
		Draft struct {
			Payload struct {
				Step int `json:"step"`
			} `json:"payload"`
		} `json:"draft"`
	}
	expect(t, s.do(http.MethodGet, path, token, nil), http.StatusOK, &one)
	if one.Draft.Payload.Step != 2 {
		t.Errorf("step = %d, want 2", one.Draft.Payload.Step)
	}

	// Drafts are per user.
	expect(t, s.do(http.MethodGet, path, other, nil), http.StatusNotFound, nil)

	expect(t, s.do(http.MethodDelete, path, token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, path, token, nil), http.StatusNotFound, nil)
}

func TestSearchHistoryFromMarketplaceQueries(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("searcher@example.com")

	for _, q := range []string{"rolex", "omega", "ROLEX"} {
		expect(t, s.do(http.MethodGet, "/v1/listings?q="+q, token, nil), http.StatusOK, nil)
	}
	// Anonymous searches are not remembered anywhere.
	expect(t, s.do(http.MethodGet, "/v1/listings?q=cartier", "", nil), http.StatusOK, nil)

	var history struct {
		Searches []models.SearchEntry `json:"searches"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/search-history", token, nil), http.StatusOK, &history)
	if len(history.Searches) != 2 {
		t.Fatalf("expected 2 searches, got %+v", history.Searches)
	}
	if history.Searches[0].Query != "ROLEX" || history.Searches[1].Query != "omega" {
		t.Errorf("unexpected order %+v", history.Searches)
	}

	expect(t, s.do(http.MethodDelete, "/v1/me/search-history", token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, "/v1/me/search-history", token, nil), http.StatusOK, &history)
	if len(history.Searches) != 0 {
		t.Errorf("history not cleared")
	}
}

func TestActivityIsCapped(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("busy@example.com")

	for i := 0; i < 25; i++ {
		expect(t, s.do(http.MethodPut, "/v1/me/views", token, gin.H{"name": "v", "scope": "marketplace"}), http.StatusOK, nil)
	}

	var activity struct {
		Activity []models.ActivityEvent `json:"activity"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/activity", token, nil), http.StatusOK, &activity)
	if len(activity.Activity) != s.cfg.ActivityLimit {
		t.Errorf("activity length = %d, want %d", len(activity.Activity), s.cfg.ActivityLimit)
	}
	expect(t, s.do(http.MethodGet, "/v1/me/activity?limit=5", token, nil), http.StatusOK, &activity)
	if len(activity.Activity) != 5 {
		t.Errorf("limit=5 returned %d", len(activity.Activity))
	}
	expect(t, s.do(http.MethodGet, "/v1/me/activity?limit=zero", token, nil), http.StatusBadRequest, nil)
}

func TestWorkspaceMutationsRecordActivity(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register("busy@example.com")
	if err := s.store.AddNotification(context.Background(), userID, "Welcome", ""); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	var notes struct {
		Notifications []models.Notification `json:"notifications"`
	}
	expect(t, s.do(http.MethodGet, "/v1/notifications", token, nil), http.StatusOK, &notes)
	if len(notes.Notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notes.Notifications))
	}

	expect(t, s.do(http.MethodPut, "/v1/me/drafts/consign-form", token, gin.H{"payload": gin.H{"step": 1}}), http.StatusOK, nil)
	expect(t, s.do(http.MethodDelete, "/v1/me/drafts/consign-form", token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodDelete, "/v1/me/search-history", token, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodPatch, "/v1/notifications/"+notes.Notifications[0].ID+"/read", token, nil), http.StatusOK, nil)

	var activity struct {
		Activity []models.ActivityEvent `json:"activity"`
	}
	expect(t, s.do(http.MethodGet, "/v1/me/activity", token, nil), http.StatusOK, &activity)
	want := []string{"notification.read", "search.clear", "draft.delete", "draft.save", "auth.register"}
	if len(activity.Activity) != len(want) {
		t.Fatalf("expected %d activity events, got %+v", len(want), activity.Activity)
	}
	for i, action := range want {
		if activity.Activity[i].Action != action {
			t.Errorf("activity[%d] = %q, want %q", i, activity.Activity[i].Action, action)
		}
	}
}
