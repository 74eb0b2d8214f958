package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"orgnotify/internal/models"
	"orgnotify/internal/service"
)

// SettingsHandler handles HTTP requests for notification automation settings
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /settings/notifications
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	settings, err := h.settings.GetNotificationSettings(r.Context(), tenant)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, settings)
}

// Update handles PUT /settings/notifications
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	var settings models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	// The scope comes from the request header, never from the body
	settings.TenantID = tenant

	if err := h.settings.UpdateNotificationSettings(r.Context(), &settings); err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, settings)
}
