// Package verify answers certificate-of-authenticity lookups. Codes issued
// by staff carry a stored result; any other well-formed code gets a mock
// result derived from the code itself, persisted on first lookup so that
// every later lookup agrees.
package verify

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
)

// ErrInvalidCode is returned for codes that fail Normalize.
var ErrInvalidCode = errors.New("invalid verification code")

var codePattern = regexp.MustCompile(`^[A-Z0-9-]{4,32}$`)

// Normalize trims and upper-cases code and checks its shape.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return "", ErrInvalidCode
	}
	return code, nil
}

// Valid reports whether code normalises successfully.
func Valid(code string) bool {
	_, err := Normalize(code)
	return err == nil
}

// MockResult derives a result and signature count from a normalised code.
// Roughly half of all codes qualify, a third are inconclusive and the rest
// are disqualified. Disqualified items carry no signatures.
func MockResult(code string) (result string, signatures int) {
	h := fnv.New32a()
	h.Write([]byte(code))
	sum := h.Sum32()

	switch bucket := sum % 6; {
	case bucket < 3:
		result = models.VerifyQualified
	case bucket < 5:
		result = models.VerifyInconclusive
	default:
		return models.VerifyDisqualified, 0
	}
	return result, int(sum/6%5) + 1
}

// Records is the persistence the Service needs.
type Records interface {
	GetVerifyRecord(ctx context.Context, code string) (*models.VerifyRecord, error)
	CreateVerifyRecord(ctx context.Context, r *models.VerifyRecord) error
	ReplaceMockVerifyRecord(ctx context.Context, r *models.VerifyRecord) error
	RecordVerifyLookup(ctx context.Context, code string) (*models.VerifyRecord, error)
}

// Service performs lookups against Records.
type Service struct {
	records Records
}

// NewService returns a Service over records.
func NewService(records Records) *Service {
	return &Service{records: records}
}

// Lookup returns the record for code, creating a mock record for codes seen
// for the first time, and counts the lookup.
func (s *Service) Lookup(ctx context.Context, code string) (*models.VerifyRecord, error) {
	code, err := Normalize(code)
	if err != nil {
		return nil, err
	}

	_, err = s.records.GetVerifyRecord(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		result, signatures := MockResult(code)
		rec := &models.VerifyRecord{Code: code, Result: result, Signatures: signatures}
		// A concurrent first lookup may win the insert; its record is
		// identical, so ErrConflict is fine.
		if err := s.records.CreateVerifyRecord(ctx, rec); err != nil && !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("creating verify record: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return s.records.RecordVerifyLookup(ctx, code)
}

// Issue stores a staff-issued record. A mock record left by an earlier
// public lookup is replaced, keeping its lookup count; a code already issued
// by staff returns store.ErrConflict.
func (s *Service) Issue(ctx context.Context, rec *models.VerifyRecord) error {
	code, err := Normalize(rec.Code)
	if err != nil {
		return err
	}
	if !models.ValidVerifyResult(rec.Result) {
		return fmt.Errorf("unknown result %q", rec.Result)
	}
	if rec.IssuedBy == nil || *rec.IssuedBy == "" {
		return errors.New("issued record needs an issuer")
	}
	if rec.Result == models.VerifyDisqualified {
		rec.Signatures = 0
	}
	rec.Code = code

	err = s.records.CreateVerifyRecord(ctx, rec)
	if errors.Is(err, store.ErrConflict) {
		return s.records.ReplaceMockVerifyRecord(ctx, rec)
	}
	return err
}
