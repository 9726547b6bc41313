package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/01moynul/relique/internal/models"
)

func TestPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &models.Post{AuthorID: "editor", Title: "Spring Auction Recap", Body: "...", Status: models.DocPublished}
	if err := s.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.Slug != "spring-auction-recap" || p.PublishedAt == nil {
		t.Errorf("unexpected post %+v", p)
	}
	other := &models.Post{AuthorID: "editor", Title: "Spring Auction Recap", Status: models.DocDraft}
	if err := s.CreatePost(ctx, other); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if other.Slug != "spring-auction-recap-2" {
		t.Errorf("expected suffixed slug, got %q", other.Slug)
	}

	published, total, err := s.ListPosts(ctx, models.DocPublished, Page{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 1 || published[0].ID != p.ID {
		t.Errorf("expected only the published post, got %v", published)
	}

	// Renaming a post onto a taken slug gets a suffix; keeping its own
	// slug does not.
	other.Slug = "spring-auction-recap"
	if err := s.UpdatePost(ctx, other); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if other.Slug != "spring-auction-recap-2" {
		t.Errorf("expected slug to stay unique, got %q", other.Slug)
	}
	p.Excerpt = "updated"
	if err := s.UpdatePost(ctx, p); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if p.Slug != "spring-auction-recap" {
		t.Errorf("expected own slug kept, got %q", p.Slug)
	}

	got, err := s.GetPostBySlug(ctx, "spring-auction-recap")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if got.Excerpt != "updated" {
		t.Errorf("expected excerpt updated, got %q", got.Excerpt)
	}

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpcomingEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	past := &models.Event{AuthorID: "editor", Title: "Winter Show", Status: models.DocPublished, StartsAt: base.Add(-48 * time.Hour)}
	later := &models.Event{AuthorID: "editor", Title: "Summer Expo", Status: models.DocPublished, StartsAt: base.Add(90 * 24 * time.Hour)}
	soon := &models.Event{AuthorID: "editor", Title: "Spring Fair", Status: models.DocPublished, StartsAt: base.Add(7 * 24 * time.Hour)}
	endsAt := base.Add(24 * time.Hour)
	running := &models.Event{AuthorID: "editor", Title: "Ongoing Exhibit", Status: models.DocPublished, StartsAt: base.Add(-24 * time.Hour), EndsAt: &endsAt}
	for _, e := range []*models.Event{past, later, soon, running} {
		if err := s.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	upcoming, total, err := s.ListEvents(ctx, EventFilter{Upcoming: true})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 upcoming events, got %d", total)
	}
	if upcoming[0].ID != running.ID || upcoming[1].ID != soon.ID || upcoming[2].ID != later.ID {
		t.Errorf("expected soonest first, got %s, %s, %s", upcoming[0].Title, upcoming[1].Title, upcoming[2].Title)
	}

	all, total, _ := s.ListEvents(ctx, EventFilter{})
	if total != 4 || all[0].ID != later.ID {
		t.Errorf("expected all events latest start first, got total=%d", total)
	}

	got, err := s.GetEventBySlug(ctx, "spring-fair")
	if err != nil {
		t.Fatalf("GetEventBySlug: %v", err)
	}
	if !got.StartsAt.Equal(soon.StartsAt) {
		t.Errorf("expected start %v, got %v", soon.StartsAt, got.StartsAt)
	}

	got.Location = "Hall B"
	if err := s.UpdateEvent(ctx, got); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if err := s.DeleteEvent(ctx, got.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := s.GetEvent(ctx, got.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
