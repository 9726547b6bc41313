package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/01moynul/relique/internal/models"
	"github.com/gin-gonic/gin"
)

func TestPostsPublishing(t *testing.T) {
	s := newTestServer(t)
	editor, editorID := s.staff("editor@example.com", models.RoleEditor)
	admin, _ := s.staff("admin@example.com", models.RoleAdmin)

	var created struct {
		Post models.Post `json:"post"`
	}
	expect(t, s.do(http.MethodPost, "/v1/cms/posts", editor, gin.H{
		"title": "Spotting a Fake Signature", "body": "Look at the pressure.", "status": "draft",
	}), http.StatusCreated, &created)
	post := created.Post
	if post.Slug != "spotting-a-fake-signature" || post.AuthorID != editorID || post.PublishedAt != nil {
		t.Fatalf("unexpected post %+v", post)
	}
	expect(t, s.do(http.MethodPost, "/v1/cms/posts", editor, gin.H{"title": "No status"}), http.StatusBadRequest, nil)

	// Drafts stay private.
	expect(t, s.do(http.MethodGet, "/v1/posts/"+post.Slug, "", nil), http.StatusNotFound, nil)
	var page struct {
		Posts []models.Post `json:"posts"`
		Total int           `json:"total"`
	}
	expect(t, s.do(http.MethodGet, "/v1/posts", "", nil), http.StatusOK, &page)
	if page.Total != 0 {
		t.Errorf("draft visible in public list")
	}

	var updated struct {
		Post models.Post `json:"post"`
	}
	expect(t, s.do(http.MethodPut, "/v1/cms/posts/"+post.ID, editor, gin.H{
		"title": "Spotting a Fake Signature", "body": "Look at the pressure.", "status": "published",
	}), http.StatusOK, &updated)
	if updated.Post.PublishedAt == nil || updated.Post.Slug != post.Slug {
		t.Errorf("publish did not stamp or changed slug: %+v", updated.Post)
	}
	expect(t, s.do(http.MethodGet, "/v1/posts/"+post.Slug, "", nil), http.StatusOK, nil)

	// Both edits were audited against the editor.
	var audit struct {
		AuditLogs []models.AuditLog `json:"auditLogs"`
		Total     int               `json:"total"`
	}
	expect(t, s.do(http.MethodGet, "/v1/admin/audit-logs?entity_type=post&actor_id="+editorID, admin, nil), http.StatusOK, &audit)
	if audit.Total != 2 || audit.AuditLogs[0].Action != "post.update" {
		t.Errorf("unexpected audit %+v", audit.AuditLogs)
	}

	expect(t, s.do(http.MethodDelete, "/v1/cms/posts/"+post.ID, editor, nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodDelete, "/v1/cms/posts/"+post.ID, editor, nil), http.StatusNotFound, nil)
	expect(t, s.do(http.MethodPut, "/v1/cms/posts/"+post.ID, editor, gin.H{"title": "x", "status": "draft"}), http.StatusNotFound, nil)
}

func TestUpcomingEvents(t *testing.T) {
	s := newTestServer(t)
	editor, _ := s.staff("editor@example.com", models.RoleEditor)

	now := time.Now().UTC()
	create := func(title string, starts time.Time, status string) {
		t.Helper()
		expect(t, s.do(http.MethodPost, "/v1/cms/events", editor, gin.H{
			"title": title, "location": "London", "status": status, "startsAt": starts,
		}), http.StatusCreated, nil)
	}
	create("Past Fair", now.Add(-72*time.Hour), "published")
	create("Next Auction", now.Add(48*time.Hour), "published")
	create("Soon Signing", now.Add(24*time.Hour), "published")
	create("Secret Preview", now.Add(12*time.Hour), "draft")

	expect(t, s.do(http.MethodPost, "/v1/cms/events", editor, gin.H{
		"title": "Backwards", "status": "draft", "startsAt": now, "endsAt": now.Add(-time.Hour),
	}), http.StatusBadRequest, nil)

	var upcoming struct {
		Events []models.Event `json:"events"`
	}
	expect(t, s.do(http.MethodGet, "/v1/events?upcoming=true", "", nil), http.StatusOK, &upcoming)
	if len(upcoming.Events) != 2 || upcoming.Events[0].Title != "Soon Signing" || upcoming.Events[1].Title != "Next Auction" {
		t.Errorf("unexpected upcoming events %+v", upcoming.Events)
	}

	var all struct {
		Total int `json:"total"`
	}
	expect(t, s.do(http.MethodGet, "/v1/events", "", nil), http.StatusOK, &all)
	if all.Total != 3 {
		t.Errorf("public events total = %d, want 3", all.Total)
	}
	expect(t, s.do(http.MethodGet, "/v1/cms/events", editor, nil), http.StatusOK, &all)
	if all.Total != 4 {
		t.Errorf("cms events total = %d, want 4", all.Total)
	}

	expect(t, s.do(http.MethodGet, "/v1/events/next-auction", "", nil), http.StatusOK, nil)
	expect(t, s.do(http.MethodGet, "/v1/events/secret-preview", "", nil), http.StatusNotFound, nil)
}
