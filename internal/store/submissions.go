package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/relique/internal/models"
)

const submissionColumns = `id, user_id, kind, status, name, email, phone, details, item, admin_note, created_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (*models.Submission, error) {
	var sub models.Submission
	var userID, phone, item, note sql.NullString
	if err := row.Scan(&sub.ID, &userID, &sub.Kind, &sub.Status, &sub.Name, &sub.Email, &phone,
		&sub.Details, &item, &note, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.UserID = stringPtr(userID)
	sub.Phone = stringPtr(phone)
	sub.AdminNote = stringPtr(note)
	if err := fromJSONText(item, &sub.Item); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}
	return &sub, nil
}

// CreateSubmission inserts sub with status "new".
func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	sub.ID = newID()
	sub.Status = models.SubmissionNew
	sub.CreatedAt = s.now()
	sub.UpdatedAt = sub.CreatedAt

	item, err := jsonText(sub.Item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, nullString(sub.UserID), sub.Kind, sub.Status, sub.Name, sub.Email, nullString(sub.Phone),
		sub.Details, item, nullString(sub.AdminNote), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating submission: %w", err)
	}
	return nil
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := scanSubmission(s.queryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting submission: %w", err)
	}
	return sub, nil
}

// SubmissionFilter narrows ListSubmissions.
type SubmissionFilter struct {
	Kind   string
	Status string
	UserID string
	Page
}

// ListSubmissions returns submissions newest first plus the total count.
func (s *Store) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]models.Submission, int, error) {
	page := f.Page.Normalize()
	var w whereClause
	if f.Kind != "" {
		w.add("kind = ?", f.Kind)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM submissions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting submissions: %w", err)
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx,
		`SELECT `+submissionColumns+` FROM submissions`+w.String()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// UpdateSubmission sets status and, when note is non-nil, the admin note.
// It returns the submission before and after the change.
func (s *Store) UpdateSubmission(ctx context.Context, id, status string, note *string) (before, after *models.Submission, err error) {
	err = s.WithTx(ctx, func(tx *Store) error {
		current, err := tx.GetSubmission(ctx, id)
		if err != nil {
			return err
		}
		updated := *current
		updated.Status = status
		if note != nil {
			updated.AdminNote = note
		}
		updated.UpdatedAt = tx.now()

		_, err = tx.exec(ctx,
			`UPDATE submissions SET status = ?, admin_note = ?, updated_at = ? WHERE id = ?`,
			updated.Status, nullString(updated.AdminNote), updated.UpdatedAt, id,
		)
		if err != nil {
			return fmt.Errorf("updating submission: %w", err)
		}
		before, after = current, &updated
		return nil
	})
	return before, after, err
}

// CountSubmissionsByStatus returns counts for new, in_review and closed.
func (s *Store) CountSubmissionsByStatus(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{
		models.SubmissionNew:      0,
		models.SubmissionInReview: 0,
		models.SubmissionClosed:   0,
	}
	rows, err := s.query(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting submissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning submission count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}
