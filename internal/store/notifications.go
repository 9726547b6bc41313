package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/relique/internal/models"
)

// AddNotification queues a message for userID. Call it on a WithTx store to
// keep it atomic with the change it reports.
func (s *Store) AddNotification(ctx context.Context, userID, message, link string) error {
	var nullLink sql.NullString
	if link != "" {
		nullLink = sql.NullString{String: link, Valid: true}
	}

	_, err := s.exec(ctx,
		`INSERT INTO notifications (id, user_id, message, link, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		newID(), userID, message, nullLink, false, s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// ListNotifications returns up to 50 notifications, unread and newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.query(ctx,
		`SELECT id, user_id, message, link, is_read, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY is_read ASC, created_at DESC, id DESC
		 LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var link sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Link = stringPtr(link)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of the user's notifications read. Another
// user's notification is reported as ErrNotFound.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	var owner string
	err := s.queryRow(ctx, `SELECT user_id FROM notifications WHERE id = ?`, id).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != userID) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading notification: %w", err)
	}
	if _, err := s.exec(ctx, `UPDATE notifications SET is_read = ? WHERE id = ?`, true, id); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}
