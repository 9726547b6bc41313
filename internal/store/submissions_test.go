package store

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/relique/internal/models"
)

func TestSubmissionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &models.Submission{
		Kind:    models.SubmissionAuthenticate,
		Name:    "Sam",
		Email:   "sam@example.com",
		Details: "Signed photo, 1996",
		Item:    map[string]any{"player": "Jordan"},
	}
	if err := s.CreateSubmission(ctx, sub); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.Status != models.SubmissionNew {
		t.Errorf("expected status new, got %q", sub.Status)
	}

	got, err := s.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.Item["player"] != "Jordan" || got.UserID != nil {
		t.Errorf("unexpected submission %+v", got)
	}

	note := "Scheduled for inspection"
	before, after, err := s.UpdateSubmission(ctx, sub.ID, models.SubmissionInReview, &note)
	if err != nil {
		t.Fatalf("UpdateSubmission: %v", err)
	}
	if before.Status != models.SubmissionNew || after.Status != models.SubmissionInReview {
		t.Errorf("unexpected transition %s -> %s", before.Status, after.Status)
	}

	got, _ = s.GetSubmission(ctx, sub.ID)
	if got.AdminNote == nil || *got.AdminNote != note {
		t.Errorf("expected admin note stored, got %v", got.AdminNote)
	}

	if _, _, err := s.UpdateSubmission(ctx, "missing", models.SubmissionClosed, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSubmissionsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "client@example.com", models.RoleClient)

	for _, kind := range []string{models.SubmissionConsign, models.SubmissionConsign, models.SubmissionContact} {
		sub := &models.Submission{Kind: kind, Name: "N", Email: "n@example.com", Details: "d"}
		if kind == models.SubmissionContact {
			sub.UserID = &user.ID
		}
		if err := s.CreateSubmission(ctx, sub); err != nil {
			t.Fatalf("CreateSubmission: %v", err)
		}
	}

	consign, total, err := s.ListSubmissions(ctx, SubmissionFilter{Kind: models.SubmissionConsign})
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if total != 2 || len(consign) != 2 {
		t.Errorf("expected 2 consign submissions, got %d", total)
	}

	mine, total, _ := s.ListSubmissions(ctx, SubmissionFilter{UserID: user.ID})
	if total != 1 || mine[0].Kind != models.SubmissionContact {
		t.Errorf("expected the user's contact submission, got %v", mine)
	}

	counts, err := s.CountSubmissionsByStatus(ctx)
	if err != nil {
		t.Fatalf("CountSubmissionsByStatus: %v", err)
	}
	if counts[models.SubmissionNew] != 3 || counts[models.SubmissionClosed] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
