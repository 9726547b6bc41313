package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/relique/internal/models"
)

// AppendActivity records ev for its user and prunes that user's stream to
// the newest limit entries.
func (s *Store) AppendActivity(ctx context.Context, ev *models.ActivityEvent, limit int) error {
	ev.ID = newID()
	ev.CreatedAt = s.now()

	return s.WithTx(ctx, func(tx *Store) error {
		_, err := tx.exec(ctx,
			`INSERT INTO activity_events (id, user_id, action, entity_type, entity_id, summary, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.UserID, ev.Action, ev.EntityType, ev.EntityID, ev.Summary, ev.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("appending activity: %w", err)
		}
		return tx.pruneUserRows(ctx, "activity_events", ev.UserID, limit)
	})
}

// pruneUserRows deletes all but the newest keep rows of userID in table.
// table is always a constant from this package.
func (s *Store) pruneUserRows(ctx context.Context, table, userID string, keep int) error {
	rows, err := s.query(ctx,
		`SELECT id FROM `+table+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return fmt.Errorf("reading %s for pruning: %w", table, err)
	}
	var stale []string
	for i := 0; rows.Next(); i++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scanning %s id: %w", table, err)
		}
		if i >= keep {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range stale {
		if _, err := s.exec(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
			return fmt.Errorf("pruning %s: %w", table, err)
		}
	}
	return nil
}

// ListActivity returns a user's activity, newest first.
func (s *Store) ListActivity(ctx context.Context, userID string, limit int) ([]models.ActivityEvent, error) {
	rows, err := s.query(ctx,
		`SELECT id, user_id, action, entity_type, entity_id, summary, created_at
		 FROM activity_events WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	events := []models.ActivityEvent{}
	for rows.Next() {
		var ev models.ActivityEvent
		var entityType, entityID, summary sql.NullString
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Action, &entityType, &entityID, &summary, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		ev.EntityType = entityType.String
		ev.EntityID = entityID.String
		ev.Summary = summary.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AppendAudit records a staff action.
func (s *Store) AppendAudit(ctx context.Context, a *models.AuditLog) error {
	a.ID = newID()
	a.CreatedAt = s.now()
	payload, err := jsonText(a.Payload)
	if err != nil {
		return fmt.Errorf("encoding audit payload: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, from_status, to_status, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ActorID, a.Action, a.EntityType, a.EntityID, nullString(a.FromStatus), nullString(a.ToStatus), payload, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending audit log: %w", err)
	}
	return nil
}

// AuditFilter narrows ListAudit.
type AuditFilter struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Page
}

// ListAudit returns audit entries newest first plus the total count.
func (s *Store) ListAudit(ctx context.Context, f AuditFilter) ([]models.AuditLog, int, error) {
	page := f.Page.Normalize()
	var w whereClause
	if f.ActorID != "" {
		w.add("actor_id = ?", f.ActorID)
	}
	if f.Action != "" {
		w.add("action = ?", f.Action)
	}
	if f.EntityType != "" {
		w.add("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		w.add("entity_id = ?", f.EntityID)
	}

	var total int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit logs: %w", err)
	}

	args := append(w.args, page.Limit, page.Offset())
	rows, err := s.query(ctx,
		`SELECT id, actor_id, action, entity_type, entity_id, from_status, to_status, payload, created_at
		 FROM audit_logs`+w.String()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var a models.AuditLog
		var from, to, payload sql.NullString
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.EntityType, &a.EntityID, &from, &to, &payload, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning audit log: %w", err)
		}
		a.FromStatus = stringPtr(from)
		a.ToStatus = stringPtr(to)
		if err := fromJSONText(payload, &a.Payload); err != nil {
			return nil, 0, fmt.Errorf("decoding audit payload: %w", err)
		}
		logs = append(logs, a)
	}
	return logs, total, rows.Err()
}

// PruneAudit deletes audit entries older than the keep-th newest one and
// returns how many rows went. Entries sharing the cutoff timestamp survive.
func (s *Store) PruneAudit(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("prune audit: keep must be positive, got %d", keep)
	}

	var cutoff time.Time
	err := s.queryRow(ctx,
		`SELECT created_at FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT 1 OFFSET ?`, keep-1,
	).Scan(&cutoff)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("finding audit cutoff: %w", err)
	}

	res, err := s.exec(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning audit logs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
