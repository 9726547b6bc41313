package store

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/relique/internal/models"
)

func TestNotifications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "n@example.com", models.RoleClient)
	other := createTestUser(t, s, "o@example.com", models.RoleClient)

	if err := s.AddNotification(ctx, user.ID, "Listing approved", "/me/listings/1"); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}
	err := s.WithTx(ctx, func(tx *Store) error {
		return tx.AddNotification(ctx, user.ID, "Submission received", "")
	})
	if err != nil {
		t.Fatalf("AddNotification in tx: %v", err)
	}

	list, err := s.ListNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[0].Message != "Submission received" || list[0].Link != nil {
		t.Errorf("expected newest first without link, got %+v", list[0])
	}

	// Reading the newest one moves it behind the unread one.
	if err := s.MarkNotificationRead(ctx, other.ID, list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's notification, got %v", err)
	}
	if err := s.MarkNotificationRead(ctx, user.ID, list[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}

	list, _ = s.ListNotifications(ctx, user.ID)
	if list[0].Message != "Listing approved" || list[0].IsRead {
		t.Errorf("expected unread first, got %+v", list[0])
	}
	if !list[1].IsRead {
		t.Error("expected second notification marked read")
	}
}
