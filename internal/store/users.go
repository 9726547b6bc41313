package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/relique/internal/models"
)

const userColumns = `id, email, password_hash, full_name, phone_number, role, status, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var phone sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &phone, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.PhoneNumber = stringPtr(phone)
	return &u, nil
}

// CreateUser inserts u, filling ID and timestamps. Emails are stored
// lower-cased; a duplicate returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = newID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}

	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, nullString(u.PhoneNumber), u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by (case-insensitive) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns users, optionally filtered by role, newest first.
func (s *Store) ListUsers(ctx context.Context, role string, page Page) ([]models.User, int, error) {
	page = page.Normalize()
	var w whereClause
	if role != "" {
		w.add("role = ?", role)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM users`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx,
		`SELECT `+userColumns+` FROM users`+w.String()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// CountUsersByRole returns the number of active users per role.
func (s *Store) CountUsersByRole(ctx context.Context) (map[string]int, error) {
	rows, err := s.query(ctx, `SELECT role, COUNT(*) FROM users WHERE status = ? GROUP BY role`, models.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scanning user count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
