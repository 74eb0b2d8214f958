package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"orgnotify/internal/provider"
	"orgnotify/internal/service"
)

// ProviderHandler handles HTTP requests for provider configuration,
// balance and connection checks.
type ProviderHandler struct {
	settings *service.SettingsService
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(settings *service.SettingsService) *ProviderHandler {
	return &ProviderHandler{settings: settings}
}

// GetBalance handles GET /provider/balance
func (h *ProviderHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	balance, err := h.settings.GetBalance(r.Context(), tenant)
	if err != nil {
		// Bad credentials get their own code so the UI can prompt for
		// re-configuration instead of showing a generic failure.
		if errors.Is(err, provider.ErrUnauthorized) {
			WriteError(w, http.StatusUnauthorized, "PROVIDER_UNAUTHORIZED", "The SMS gateway rejected the stored credentials")
			return
		}
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, balance)
}

// TestConnectionRequest represents the request body for POST /provider/test
type TestConnectionRequest struct {
	Phone string `json:"phone"`
}

// TestConnection handles POST /provider/test
func (h *ProviderHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	var req TestConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	outcome, err := h.settings.TestConnection(r.Context(), tenant, req.Phone)
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]interface{}{
		"success": outcome.Success,
		"error":   outcome.Error,
	})
}

// Activate handles PUT /provider/configs/{id}/activate
func (h *ProviderHandler) Activate(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteValidationError(w, "invalid provider config ID format")
		return
	}

	if err := h.settings.ActivateProviderConfig(r.Context(), tenant, id); err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]bool{"success": true})
}
