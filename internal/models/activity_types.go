package models

import "time"

// ActivityEvent is one entry of a user's recent activity stream. The stream is
// capped per user; older entries are pruned on write.
type ActivityEvent struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entityType,omitempty" db:"entity_type"`
	EntityID   string    `json:"entityId,omitempty" db:"entity_id"`
	Summary    string    `json:"summary,omitempty" db:"summary"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// AuditLog is the model for the 'audit_logs' table: staff actions.
type AuditLog struct {
	ID         string         `json:"id" db:"id"`
	ActorID    string         `json:"actorId" db:"actor_id"`
	Action     string         `json:"action" db:"action"`
	EntityType string         `json:"entityType" db:"entity_type"`
	EntityID   string         `json:"entityId" db:"entity_id"`
	FromStatus *string        `json:"fromStatus,omitempty" db:"from_status"`
	ToStatus   *string        `json:"toStatus,omitempty" db:"to_status"`
	Payload    map[string]any `json:"payload,omitempty" db:"payload"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
}
