package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/relique/internal/middleware"
	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/01moynul/relique/internal/verify"
	"github.com/gin-gonic/gin"
)

// IssueVerifyRecordInput is the body of POST /v1/admin/verify-records.
type IssueVerifyRecordInput struct {
	Code        string  `json:"code" binding:"required,verifycode"`
	ProductName *string `json:"productName" binding:"omitempty,max=200"`
	Signatures  int     `json:"signatures" binding:"gte=0,lte=100"`
	Result      string  `json:"result" binding:"required,oneof=qualified inconclusive disqualified"`
}

// VerifyCode handles GET /v1/verify/:code.
func (h *Handlers) VerifyCode(c *gin.Context) {
	record, err := h.Verify.Lookup(c.Request.Context(), c.Param("code"))
	if errors.Is(err, verify.ErrInvalidCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}
	if err != nil {
		h.respondError(c, err, "Verification record")
		return
	}

	h.recordActivity(c, "verify.lookup", "verify_record", record.Code, record.Result)
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// IssueVerifyRecord handles POST /v1/admin/verify-records.
func (h *Handlers) IssueVerifyRecord(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input IssueVerifyRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Issue ---
	issuer := middleware.UserID(c)
	record := &models.VerifyRecord{
		Code:        input.Code,
		ProductName: input.ProductName,
		Signatures:  input.Signatures,
		Result:      input.Result,
		IssuedBy:    &issuer,
	}
	err := h.Verify.Issue(c.Request.Context(), record)
	switch {
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "A record for this code already exists"})
		return
	case errors.Is(err, verify.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	case err != nil:
		h.respondError(c, err, "Verification record")
		return
	}

	// 3. --- Audit ---
	h.recordAudit(c, "verify.issue", "verify_record", record.Code, nil, strPtr(record.Result),
		map[string]any{"signatures": record.Signatures})

	c.JSON(http.StatusCreated, gin.H{"message": "Verification record issued", "record": record})
}

// GetVerifyRecord handles GET /v1/admin/verify-records/:code. Unlike the
// public lookup it neither creates records nor counts the lookup.
func (h *Handlers) GetVerifyRecord(c *gin.Context) {
	code, err := verify.Normalize(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		return
	}
	record, err := h.Store.GetVerifyRecord(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, err, "Verification record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}
