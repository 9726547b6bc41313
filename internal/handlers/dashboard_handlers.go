package handlers

import (
	"net/http"

	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard Stats ---
//

type DashboardStats struct {
	Listings      map[string]int    `json:"listings"`
	Submissions   map[string]int    `json:"submissions"`
	Users         map[string]int    `json:"users"`
	VerifyLookups int64             `json:"verifyLookups"`
	RecentAudit   []models.AuditLog `json:"recentAudit"`
}

// GetDashboardStats returns KPI data for the admin dashboard
// GET /v1/admin/dashboard-stats
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := DashboardStats{}
	var err error

	// 1. Listings by status
	if stats.Listings, err = h.Store.CountListingsByStatus(ctx); err != nil {
		h.respondError(c, err, "Listing stats")
		return
	}

	// 2. Submissions by status
	if stats.Submissions, err = h.Store.CountSubmissionsByStatus(ctx); err != nil {
		h.respondError(c, err, "Submission stats")
		return
	}

	// 3. Users by role
	if stats.Users, err = h.Store.CountUsersByRole(ctx); err != nil {
		h.respondError(c, err, "User stats")
		return
	}

	// 4. Verification lookups
	if stats.VerifyLookups, err = h.Store.TotalVerifyLookups(ctx); err != nil {
		h.respondError(c, err, "Verify stats")
		return
	}

	// 5. Latest staff actions
	if stats.RecentAudit, _, err = h.Store.ListAudit(ctx, store.AuditFilter{Page: store.Page{Page: 1, Limit: 10}}); err != nil {
		h.respondError(c, err, "Audit logs")
		return
	}

	c.JSON(http.StatusOK, stats)
}
