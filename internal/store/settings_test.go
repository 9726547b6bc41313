package store

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/relique/internal/models"
)

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, models.SettingSiteTitle); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	on, err := s.MaintenanceMode(ctx)
	if err != nil || on {
		t.Errorf("expected maintenance off by default, got %v %v", on, err)
	}

	if err := s.PutSetting(ctx, models.SettingSiteTitle, "Relique", "Shown in the header"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := s.PutSetting(ctx, models.SettingSiteTitle, "Relique Auctions", ""); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	if err := s.PutSetting(ctx, models.SettingMaintenanceMode, "true", ""); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}

	title, _ := s.GetSetting(ctx, models.SettingSiteTitle)
	if title != "Relique Auctions" {
		t.Errorf("expected updated title, got %q", title)
	}

	settings, err := s.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("expected 2 settings, got %d", len(settings))
	}
	if settings[1].Key != models.SettingSiteTitle || settings[1].Description != "Shown in the header" {
		t.Errorf("expected description kept on update, got %+v", settings[1])
	}

	on, _ = s.MaintenanceMode(ctx)
	if !on {
		t.Error("expected maintenance mode on")
	}
}
