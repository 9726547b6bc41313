package handlers_test

import (
	"net/http"
	"testing"

	"github.com/01moynul/relique/internal/models"
	"github.com/gin-gonic/gin"
)

func TestSettingsAndGlobals(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.staff("admin@example.com", models.RoleAdmin)

	var globals struct {
		Globals map[string]string `json:"globals"`
	}
	expect(t, s.do(http.MethodGet, "/v1/globals", "", nil), http.StatusOK, &globals)
	if globals.Globals["site_title"] != "Relique" || globals.Globals["maintenance_mode"] != "false" {
		t.Errorf("unexpected defaults %+v", globals.Globals)
	}

	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{"settings": gin.H{"theme": "dark"}}), http.StatusBadRequest, nil)
	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{"settings": gin.H{"maintenance_mode": "yes"}}), http.StatusBadRequest, nil)
	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{"settings": gin.H{}}), http.StatusBadRequest, nil)

	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{
		"settings": gin.H{"site_title": "Relique Archive", "announcement": "Spring auction opens Friday"},
	}), http.StatusOK, nil)

	globals.Globals = nil
	expect(t, s.do(http.MethodGet, "/v1/globals", "", nil), http.StatusOK, &globals)
	if globals.Globals["site_title"] != "Relique Archive" || globals.Globals["announcement"] != "Spring auction opens Friday" {
		t.Errorf("settings not saved: %+v", globals.Globals)
	}

	var settings struct {
		Settings []models.Setting `json:"settings"`
	}
	expect(t, s.do(http.MethodGet, "/v1/admin/settings", admin, nil), http.StatusOK, &settings)
	if len(settings.Settings) != 4 || settings.Settings[0].Key != "announcement" {
		t.Errorf("unexpected settings %+v", settings.Settings)
	}
}

func TestMaintenanceModeBlocksNonAdmins(t *testing.T) {
	s := newTestServer(t)
	client, _ := s.register("client@example.com")
	admin, _ := s.staff("admin@example.com", models.RoleAdmin)

	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{"settings": gin.H{"maintenance_mode": "true"}}), http.StatusOK, nil)

	expect(t, s.do(http.MethodGet, "/v1/me", client, nil), http.StatusServiceUnavailable, nil)
	expect(t, s.do(http.MethodGet, "/v1/me", admin, nil), http.StatusOK, nil)

	expect(t, s.do(http.MethodPatch, "/v1/admin/settings", admin, gin.H{"settings": gin.H{"maintenance_mode": "false"}}), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, "/v1/me", client, nil), http.StatusOK, nil)
}

func TestDashboardStats(t *testing.T) {
	s := newTestServer(t)
	admin, _ := s.staff("admin@example.com", models.RoleAdmin)
	_, seller := s.register("seller@example.com")
	s.publishedListing(seller, "Leica M3", "cameras", 2500)
	expect(t, s.do(http.MethodGet, "/v1/verify/RLQ-1000", "", nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, "/v1/verify/RLQ-1000", "", nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodPost, "/v1/submissions", "", gin.H{
		"kind": "authenticate", "name": "A", "email": "a@example.com", "details": "Is this real?",
	}), http.StatusCreated, nil)

	var stats struct {
		Listings      map[string]int `json:"listings"`
		Submissions   map[string]int `json:"submissions"`
		Users         map[string]int `json:"users"`
		VerifyLookups int64          `json:"verifyLookups"`
	}
	expect(t, s.do(http.MethodGet, "/v1/admin/dashboard-stats", admin, nil), http.StatusOK, &stats)
	if stats.Listings["published"] != 1 || stats.Listings["draft"] != 0 {
		t.Errorf("listings = %v", stats.Listings)
	}
	if stats.Submissions["new"] != 1 {
		t.Errorf("submissions = %v", stats.Submissions)
	}
	if stats.Users["admin"] != 1 || stats.Users["client"] != 1 {
		t.Errorf("users = %v", stats.Users)
	}
	if stats.VerifyLookups != 2 {
		t.Errorf("verify lookups = %d", stats.VerifyLookups)
	}
}
