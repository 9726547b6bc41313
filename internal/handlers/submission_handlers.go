package handlers

import (
	"net/http"
	"strings"

	"github.com/01moynul/relique/internal/email"
	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// CreateSubmissionInput is the body of POST /v1/submissions. Item carries the
// free-form object metadata (maker, era, condition, photos).
type CreateSubmissionInput struct {
	Kind    string         `json:"kind" binding:"required,oneof=consign authenticate contact"`
	Name    string         `json:"name" binding:"required,max=200"`
	Email   string         `json:"email" binding:"required,email,max=255"`
	Phone   *string        `json:"phone" binding:"omitempty,max=50"`
	Details string         `json:"details" binding:"required,max=5000"`
	Item    map[string]any `json:"item"`
}

// UpdateSubmissionInput is the body of PATCH /v1/admin/submissions/:id.
type UpdateSubmissionInput struct {
	Status string  `json:"status" binding:"required,oneof=new in_review closed"`
	Note   *string `json:"note" binding:"omitempty,max=2000"`
}

type submissionQuery struct {
	pageQuery
	Kind   string `form:"kind" binding:"omitempty,oneof=consign authenticate contact"`
	Status string `form:"status" binding:"omitempty,oneof=new in_review closed"`
}

// CreateSubmission handles POST /v1/submissions. It is public; a signed-in
// caller is linked to the submission.
func (h *Handlers) CreateSubmission(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input CreateSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Save ---
	sub := &models.Submission{
		Kind:    input.Kind,
		Name:    strings.TrimSpace(input.Name),
		Email:   input.Email,
		Phone:   input.Phone,
		Details: input.Details,
		Item:    input.Item,
	}
	if userID := middleware.UserID(c); userID != "" {
		sub.UserID = &userID
	}
	ctx := c.Request.Context()
	if err := h.Store.CreateSubmission(ctx, sub); err != nil {
		h.respondError(c, err, "Submission")
		return
	}

	// 3. --- Side effects ---
	h.recordActivity(c, "submission.create", "submission", sub.ID, sub.Kind)
	h.sendMail(ctx, email.SubmissionReceived(sub))

	c.JSON(http.StatusCreated, gin.H{"message": "Submission received", "submission": sub})
}

// ListMySubmissions handles GET /v1/me/submissions.
func (h *Handlers) ListMySubmissions(c *gin.Context) {
	var q submissionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	subs, total, err := h.Store.ListSubmissions(c.Request.Context(), store.SubmissionFilter{
		Kind:   q.Kind,
		Status: q.Status,
		UserID: middleware.UserID(c),
		Page:   page,
	})
	if err != nil {
		h.respondError(c, err, "Submissions")
		return
	}
	c.JSON(http.StatusOK, pageResponse("submissions", subs, total, page))
}

// AdminListSubmissions handles GET /v1/admin/submissions.
func (h *Handlers) AdminListSubmissions(c *gin.Context) {
	var q submissionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	subs, total, err := h.Store.ListSubmissions(c.Request.Context(), store.SubmissionFilter{
		Kind:   q.Kind,
		Status: q.Status,
		Page:   page,
	})
	if err != nil {
		h.respondError(c, err, "Submissions")
		return
	}
	c.JSON(http.StatusOK, pageResponse("submissions", subs, total, page))
}

// UpdateSubmission handles PATCH /v1/admin/submissions/:id.
func (h *Handlers) UpdateSubmission(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input UpdateSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Update ---
	ctx := c.Request.Context()
	before, after, err := h.Store.UpdateSubmission(ctx, c.Param("id"), input.Status, input.Note)
	if err != nil {
		h.respondError(c, err, "Submission")
		return
	}

	// 3. --- Audit & tell the submitter ---
	payload := map[string]any{"kind": after.Kind}
	if input.Note != nil {
		payload["note"] = *input.Note
	}
	h.recordAudit(c, "submission.update", "submission", after.ID, strPtr(before.Status), strPtr(after.Status), payload)

	if before.Status != after.Status {
		if after.UserID != nil {
			h.notify(ctx, *after.UserID, "Your "+after.Kind+" request is now "+strings.ReplaceAll(after.Status, "_", " "), "/me/submissions")
		}
		h.sendMail(ctx, email.SubmissionStatusChanged(after))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Submission updated", "submission": after})
}
