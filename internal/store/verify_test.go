package store

import (
	"context"
	"errors"
	"testing"

	"github.com/01moynul/relique/internal/models"
)

func TestVerifyRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &models.VerifyRecord{Code: "RLQ-0001", Signatures: 2, Result: models.VerifyQualified}
	if err := s.CreateVerifyRecord(ctx, rec); err != nil {
		t.Fatalf("CreateVerifyRecord: %v", err)
	}
	dup := &models.VerifyRecord{Code: "RLQ-0001", Result: models.VerifyDisqualified}
	if err := s.CreateVerifyRecord(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate code, got %v", err)
	}

	for i := 1; i <= 2; i++ {
		got, err := s.RecordVerifyLookup(ctx, "RLQ-0001")
		if err != nil {
			t.Fatalf("RecordVerifyLookup: %v", err)
		}
		if got.Lookups != int64(i) {
			t.Errorf("expected %d lookups, got %d", i, got.Lookups)
		}
		if got.Result != models.VerifyQualified {
			t.Errorf("expected result to stay qualified, got %q", got.Result)
		}
	}

	if _, err := s.RecordVerifyLookup(ctx, "NOPE-0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	total, err := s.TotalVerifyLookups(ctx)
	if err != nil {
		t.Fatalf("TotalVerifyLookups: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 total lookups, got %d", total)
	}
}
