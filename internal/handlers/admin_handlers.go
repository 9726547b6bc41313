package handlers

import (
	"net/http"
	"sort"

	"github.com/01moynul/relique/internal/models"
	"github.com/01moynul/relique/internal/store"
	"github.com/gin-gonic/gin"
)

// knownSettings lists the globals admins may change, with their defaults.
var knownSettings = map[string]models.Setting{
	models.SettingMaintenanceMode: {Key: models.SettingMaintenanceMode, Value: "false", Description: "Blocks everyone except admins with 503"},
	models.SettingSiteTitle:       {Key: models.SettingSiteTitle, Value: "Relique", Description: "Shown in page titles and e-mails"},
	models.SettingContactEmail:    {Key: models.SettingContactEmail, Value: "", Description: "Public contact address"},
	models.SettingAnnouncement:    {Key: models.SettingAnnouncement, Value: "", Description: "Banner text on the marketplace"},
}

// loadSettings merges the stored settings over the defaults.
func (h *Handlers) loadSettings(c *gin.Context) ([]models.Setting, bool) {
	stored, err := h.Store.ListSettings(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Settings")
		return nil, false
	}
	merged := make(map[string]models.Setting, len(knownSettings))
	for k, v := range knownSettings {
		merged[k] = v
	}
	for _, st := range stored {
		if _, ok := knownSettings[st.Key]; ok {
			merged[st.Key] = st
		}
	}

	settings := make([]models.Setting, 0, len(merged))
	for _, st := range merged {
		settings = append(settings, st)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, true
}

//
// --- Globals ---
//

// GetGlobals handles GET /v1/globals: the public site settings as a flat
// key/value object.
func (h *Handlers) GetGlobals(c *gin.Context) {
	settings, ok := h.loadSettings(c)
	if !ok {
		return
	}
	globals := make(map[string]string, len(settings))
	for _, st := range settings {
		globals[st.Key] = st.Value
	}
	c.JSON(http.StatusOK, gin.H{"globals": globals})
}

//
// --- Admin: settings ---
//

// UpdateSettingsInput is the body of PATCH /v1/admin/settings.
type UpdateSettingsInput struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,max=2000"`
}

// GetSettings handles GET /v1/admin/settings.
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, ok := h.loadSettings(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings handles PATCH /v1/admin/settings. Unknown keys are
// rejected; every key in the body is saved in one transaction.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for key, value := range input.Settings {
		if _, ok := knownSettings[key]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown setting: " + key})
			return
		}
		if key == models.SettingMaintenanceMode && value != "true" && value != "false" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maintenance_mode must be \"true\" or \"false\""})
			return
		}
	}

	// 2. --- Save ---
	ctx := c.Request.Context()
	err := h.Store.WithTx(ctx, func(tx *store.Store) error {
		for key, value := range input.Settings {
			if err := tx.PutSetting(ctx, key, value, knownSettings[key].Description); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.respondError(c, err, "Settings")
		return
	}

	// 3. --- Audit ---
	payload := make(map[string]any, len(input.Settings))
	for k, v := range input.Settings {
		payload[k] = v
	}
	h.recordAudit(c, "settings.update", "settings", "globals", nil, nil, payload)

	settings, ok := h.loadSettings(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated", "settings": settings})
}

//
// --- Admin: audit trail ---
//

type auditQuery struct {
	pageQuery
	ActorID    string `form:"actor_id"`
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	EntityID   string `form:"entity_id"`
}

// ListAuditLogs handles GET /v1/admin/audit-logs.
func (h *Handlers) ListAuditLogs(c *gin.Context) {
	var q auditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := q.toPage()
	logs, total, err := h.Store.ListAudit(c.Request.Context(), store.AuditFilter{
		ActorID:    q.ActorID,
		Action:     q.Action,
		EntityType: q.EntityType,
		EntityID:   q.EntityID,
		Page:       page,
	})
	if err != nil {
		h.respondError(c, err, "Audit logs")
		return
	}
	c.JSON(http.StatusOK, pageResponse("auditLogs", logs, total, page))
}
