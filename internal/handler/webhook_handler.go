package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"orgnotify/internal/service"
)

// WebhookHandler ingests asynchronous delivery-status callbacks from the
// SMS gateway.
type WebhookHandler struct {
	reconcile *service.ReconcileService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconcile *service.ReconcileService) *WebhookHandler {
	return &WebhookHandler{reconcile: reconcile}
}

// DeliveryCallbackRequest is the gateway's callback body. MessageID is the
// correlation identifier we embedded in the outbound request, not the
// message's own id.
type DeliveryCallbackRequest struct {
	MessageID   string  `json:"message_id"`
	Status      string  `json:"status,omitempty"`
	PhoneNumber string  `json:"phone_number"`
	Timestamp   *string `json:"timestamp,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// HandleDeliveryStatus handles POST /webhooks/delivery
func (h *WebhookHandler) HandleDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	var req DeliveryCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if req.MessageID == "" {
		WriteValidationError(w, "message_id is required")
		return
	}
	if req.PhoneNumber == "" {
		WriteValidationError(w, "phone_number is required")
		return
	}

	callback := &service.DeliveryCallback{
		CorrelationID:  req.MessageID,
		ProviderStatus: req.Status,
		Phone:          req.PhoneNumber,
		Error:          req.Error,
	}
	if req.Timestamp != nil {
		// A timestamp the gateway mangled is not worth failing the callback
		if t, err := time.Parse(time.RFC3339, *req.Timestamp); err == nil {
			callback.Timestamp = &t
		}
	}

	if err := h.reconcile.Reconcile(r.Context(), callback); err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]bool{"success": true})
}
