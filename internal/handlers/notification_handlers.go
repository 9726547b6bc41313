package handlers

import (
	"net/http"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /v1/notifications
// It retrieves the caller's notifications, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	notifications, err := h.Store.ListNotifications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err, "Notifications")
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.MarkNotificationRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		h.respondError(c, err, "Notification")
		return
	}
	h.recordActivity(c, "notification.read", "notification", id, "")
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
