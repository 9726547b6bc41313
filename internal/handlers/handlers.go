package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/01moynul/relique/internal/ai"
	"github.com/01moynul/relique/internal/config"
	"github.com/01moynul/relique/internal/email"
	"github.com/01moynul/relique/internal/events"
	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/01moynul/relique/internal/verify"
	"github.com/gin-gonic/gin"
)

// Assistant answers back-office questions. It is nil when no AI key is
// configured.
type Assistant interface {
	Ask(ctx context.Context, message, role string) (*ai.Answer, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store     *store.Store
	Verify    *verify.Service
	Config    config.Config
	Events    events.Publisher
	Mailer    email.Sender
	Assistant Assistant
	Logger    *slog.Logger
}

// New wires a Handlers from its dependencies.
func New(st *store.Store, cfg config.Config, pub events.Publisher, mailer email.Sender, assistant Assistant, logger *slog.Logger) *Handlers {
	return &Handlers{
		Store:     st,
		Verify:    verify.NewService(st),
		Config:    cfg,
		Events:    pub,
		Mailer:    mailer,
		Assistant: assistant,
		Logger:    logger,
	}
}

// Ping is the liveness probe.
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong!"})
}

// Healthz checks the primary database.
func (h *Handlers) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps store errors onto HTTP statuses. Anything unexpected is
// logged and hidden behind a generic 500.
func (h *Handlers) respondError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": what + " conflicts with existing data"})
	default:
		h.Logger.Error("request failed",
			"error", err,
			"what", what,
			"path", c.FullPath(),
			"request_id", middleware.RequestIDFrom(c),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// recordActivity appends to the caller's activity stream and publishes the
// event. Failures are logged, never returned to the client.
func (h *Handlers) recordActivity(c *gin.Context, action, entityType, entityID, summary string) {
	userID := middleware.UserID(c)
	if userID == "" {
		return
	}
	ctx := c.Request.Context()
	ev := &models.ActivityEvent{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    summary,
	}
	if err := h.Store.AppendActivity(ctx, ev, h.Config.ActivityLimit); err != nil {
		h.Logger.Error("recording activity", "error", err, "action", action)
		return
	}
	h.publish(ctx, events.Event{
		ID:         ev.ID,
		Kind:       events.KindActivity,
		Action:     action,
		ActorID:    userID,
		EntityType: entityType,
		EntityID:   entityID,
		Data:       map[string]any{"summary": summary},
		OccurredAt: ev.CreatedAt,
	})
}

// recordAudit writes an audit entry for a staff action, plus the matching
// activity event for the actor.
func (h *Handlers) recordAudit(c *gin.Context, action, entityType, entityID string, from, to *string, payload map[string]any) {
	ctx := c.Request.Context()
	entry := &models.AuditLog{
		ActorID:    middleware.UserID(c),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: from,
		ToStatus:   to,
		Payload:    payload,
	}
	if err := h.Store.AppendAudit(ctx, entry); err != nil {
		h.Logger.Error("recording audit log", "error", err, "action", action)
	} else {
		data := map[string]any{}
		for k, v := range payload {
			data[k] = v
		}
		if from != nil {
			data["from"] = *from
		}
		if to != nil {
			data["to"] = *to
		}
		h.publish(ctx, events.Event{
			ID:         entry.ID,
			Kind:       events.KindAudit,
			Action:     action,
			ActorID:    entry.ActorID,
			EntityType: entityType,
			EntityID:   entityID,
			Data:       data,
			OccurredAt: entry.CreatedAt,
		})
	}
	h.recordActivity(c, action, entityType, entityID, "")
}

func (h *Handlers) publish(ctx context.Context, ev events.Event) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(ctx, ev); err != nil {
		h.Logger.Warn("publishing event", "error", err, "action", ev.Action)
	}
}

// notify queues an in-app notification; failures are only logged.
func (h *Handlers) notify(ctx context.Context, userID, message, link string) {
	if userID == "" {
		return
	}
	if err := h.Store.AddNotification(ctx, userID, message, link); err != nil {
		h.Logger.Error("adding notification", "error", err, "user_id", userID)
	}
}

// sendMail delivers msg; failures are only logged.
func (h *Handlers) sendMail(ctx context.Context, msg email.Message) {
	if h.Mailer == nil {
		return
	}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		h.Logger.Error("sending email", "error", err, "subject", msg.Subject)
	}
}

// pageQuery is the common ?page=&limit= pair.
type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q pageQuery) toPage() store.Page {
	return store.Page{Page: q.Page, Limit: q.Limit}.Normalize()
}

// pageResponse wraps one page of items.
func pageResponse(key string, items any, total int, page store.Page) gin.H {
	return gin.H{
		key:       items,
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
		"hasMore": page.Page*page.Limit < total,
	}
}

func strPtr(s string) *string { return &s }
