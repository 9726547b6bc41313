package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/relique/internal/models"
)

const verifyColumns = `id, code, product_name, signatures, result, issued_by, lookups, created_at, updated_at`

func scanVerifyRecord(row interface{ Scan(...any) error }) (*models.VerifyRecord, error) {
	var r models.VerifyRecord
	var product, issuedBy sql.NullString
	if err := row.Scan(&r.ID, &r.Code, &product, &r.Signatures, &r.Result, &issuedBy, &r.Lookups, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ProductName = stringPtr(product)
	r.IssuedBy = stringPtr(issuedBy)
	return &r, nil
}

// GetVerifyRecord returns the record for a normalised code.
func (s *Store) GetVerifyRecord(ctx context.Context, code string) (*models.VerifyRecord, error) {
	r, err := scanVerifyRecord(s.queryRow(ctx, `SELECT `+verifyColumns+` FROM verify_records WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting verify record: %w", err)
	}
	return r, nil
}

// CreateVerifyRecord inserts r. A code that already exists returns ErrConflict.
func (s *Store) CreateVerifyRecord(ctx context.Context, r *models.VerifyRecord) error {
	r.ID = newID()
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt
	_, err := s.exec(ctx,
		`INSERT INTO verify_records (`+verifyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Code, nullString(r.ProductName), r.Signatures, r.Result, nullString(r.IssuedBy), r.Lookups, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating verify record: %w", err)
	}
	return nil
}

// ReplaceMockVerifyRecord overwrites the mock record stored for r.Code with
// the staff-issued values in r. The lookup counter and creation time are
// kept. A record already issued by staff, or no record at all, returns
// ErrConflict or ErrNotFound respectively.
func (s *Store) ReplaceMockVerifyRecord(ctx context.Context, r *models.VerifyRecord) error {
	return s.WithTx(ctx, func(tx *Store) error {
		existing, err := tx.GetVerifyRecord(ctx, r.Code)
		if err != nil {
			return err
		}
		if existing.IssuedBy != nil {
			return ErrConflict
		}

		now := tx.now()
		res, err := tx.exec(ctx,
			`UPDATE verify_records SET product_name = ?, signatures = ?, result = ?, issued_by = ?, updated_at = ?
			 WHERE code = ? AND issued_by IS NULL`,
			nullString(r.ProductName), r.Signatures, r.Result, nullString(r.IssuedBy), now, r.Code,
		)
		if err != nil {
			return fmt.Errorf("replacing verify record: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrConflict
		}

		r.ID = existing.ID
		r.Lookups = existing.Lookups
		r.CreatedAt = existing.CreatedAt
		r.UpdatedAt = now
		return nil
	})
}

// RecordVerifyLookup increments the lookup counter of code and returns the
// updated record.
func (s *Store) RecordVerifyLookup(ctx context.Context, code string) (*models.VerifyRecord, error) {
	var rec *models.VerifyRecord
	err := s.WithTx(ctx, func(tx *Store) error {
		res, err := tx.exec(ctx,
			`UPDATE verify_records SET lookups = lookups + 1, updated_at = ? WHERE code = ?`,
			tx.now(), code,
		)
		if err != nil {
			return fmt.Errorf("recording verify lookup: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		rec, err = tx.GetVerifyRecord(ctx, code)
		return err
	})
	return rec, err
}

// TotalVerifyLookups sums lookups over all records.
func (s *Store) TotalVerifyLookups(ctx context.Context) (int64, error) {
	var total int64
	if err := s.queryRow(ctx, `SELECT COALESCE(SUM(lookups), 0) FROM verify_records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing verify lookups: %w", err)
	}
	return total, nil
}
