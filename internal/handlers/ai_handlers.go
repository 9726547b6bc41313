package handlers

import (
	"net/http"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ChatInput defines the structure of the JSON request body.
type ChatInput struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// ChatAI handles POST /v1/admin/assistant.
func (h *Handlers) ChatAI(c *gin.Context) {
	// 1. The assistant is optional
	if h.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	// 2. Parse Input
	var input ChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. Ask
	answer, err := h.Assistant.Ask(c.Request.Context(), input.Message, middleware.UserRole(c))
	if err != nil {
		h.Logger.Error("assistant failed", "error", err, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI service unavailable"})
		return
	}

	// 4. Keep a trail of what was asked and which queries ran
	h.recordAudit(c, "assistant.ask", "assistant", "", nil, nil, map[string]any{
		"message": input.Message,
		"queries": answer.Queries,
		"tokens":  answer.TotalTokens,
	})

	c.JSON(http.StatusOK, answer)
}
