// Package events publishes activity and audit records to an event stream.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Event kinds.
const (
	KindActivity = "activity"
	KindAudit    = "audit"
)

// Event is the envelope written to the stream.
type Event struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Action     string         `json:"action"`
	ActorID    string         `json:"actorId"`
	EntityType string         `json:"entityType,omitempty"`
	EntityID   string         `json:"entityId,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Key is the partition key: events about one entity stay ordered.
func (e Event) Key() string {
	if e.EntityID != "" {
		return e.EntityID
	}
	return e.ActorID
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// LogPublisher writes events to a structured logger. It is the default when
// no broker is configured.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish logs ev at debug level.
func (p LogPublisher) Publish(ctx context.Context, ev Event) error {
	p.Logger.DebugContext(ctx, "event",
		"kind", ev.Kind,
		"action", ev.Action,
		"actor_id", ev.ActorID,
		"entity_type", ev.EntityType,
		"entity_id", ev.EntityID,
	)
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }

// Multi fans an event out to several publishers. Every publisher is tried;
// the errors are joined.
type Multi []Publisher

// Publish sends ev to every publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
