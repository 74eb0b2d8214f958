package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"orgnotify/internal/models"
	"orgnotify/internal/repository"
	"orgnotify/internal/service"
)

// MessageHandler handles HTTP requests for message dispatch and history
type MessageHandler struct {
	dispatch    *service.DispatchService
	messageRepo repository.MessageRepository
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(dispatch *service.DispatchService, messageRepo repository.MessageRepository) *MessageHandler {
	return &MessageHandler{
		dispatch:    dispatch,
		messageRepo: messageRepo,
	}
}

// SendRequest represents the request body for POST /messages/send
type SendRequest struct {
	Title         *string                  `json:"title,omitempty"`
	Body          string                   `json:"body"`
	TemplateID    *int64                   `json:"template_id,omitempty"`
	RecipientType models.RecipientType     `json:"recipient_type"`
	Recipients    []service.RecipientInput `json:"recipients"`
}

// Send handles POST /messages/send - dispatches a message to its recipients
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if len(req.Recipients) == 0 {
		WriteValidationError(w, "recipients cannot be empty")
		return
	}

	result, err := h.dispatch.Send(r.Context(), &service.SendRequest{
		TenantID:      tenant,
		Title:         req.Title,
		Body:          req.Body,
		TemplateID:    req.TemplateID,
		RecipientType: req.RecipientType,
		Recipients:    req.Recipients,
	})
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteCreated(w, result)
}

// GetByID handles GET /messages/{id} - returns a message with its recipients
func (h *MessageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteValidationError(w, "invalid message ID format")
		return
	}

	message, err := h.messageRepo.GetWithRecipients(r.Context(), tenant, id)
	if err != nil {
		WriteNotFoundError(w, "message", idStr)
		return
	}

	WriteOK(w, message)
}
