package store

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/relique/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "  Alice@Example.COM ", models.RoleClient)
	if u.Email != "alice@example.com" {
		t.Errorf("expected lower-cased email, got %q", u.Email)
	}
	if u.Status != models.UserStatusActive {
		t.Errorf("expected status active, got %q", u.Status)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != u.Email || got.Role != models.RoleClient {
		t.Errorf("unexpected user %+v", got)
	}

	byEmail, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("expected id %s, got %s", u.ID, byEmail.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "dup@example.com", models.RoleClient)

	err := s.CreateUser(context.Background(), &models.User{Email: "DUP@example.com", PasswordHash: "x", FullName: "Dup", Role: models.RoleClient})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestGetUserMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUser(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAndCountUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "a@example.com", models.RoleClient)
	createTestUser(t, s, "b@example.com", models.RoleClient)
	createTestUser(t, s, "c@example.com", models.RoleAdmin)

	clients, total, err := s.ListUsers(ctx, models.RoleClient, Page{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 2 || len(clients) != 2 {
		t.Errorf("expected 2 clients, got total=%d len=%d", total, len(clients))
	}

	counts, err := s.CountUsersByRole(ctx)
	if err != nil {
		t.Fatalf("CountUsersByRole: %v", err)
	}
	if counts[models.RoleClient] != 2 || counts[models.RoleAdmin] != 1 || counts[models.RoleEditor] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}
