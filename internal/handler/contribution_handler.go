package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"orgnotify/internal/models"
	"orgnotify/internal/repository"
	"orgnotify/internal/service"
)

// ContributionHandler records contributions and fires the acknowledgement
// notification as a best-effort side effect.
type ContributionHandler struct {
	contributionRepo repository.ContributionRepository
	triggers         *service.TriggerService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionRepo repository.ContributionRepository, triggers *service.TriggerService) *ContributionHandler {
	return &ContributionHandler{
		contributionRepo: contributionRepo,
		triggers:         triggers,
	}
}

// CreateContributionRequest represents the request body for POST /contributions
type CreateContributionRequest struct {
	MemberID   string     `json:"member_id"`
	CategoryID int64      `json:"category_id"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	GivenAt    *time.Time `json:"given_at,omitempty"`
}

// Create handles POST /contributions
func (h *ContributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		WriteValidationError(w, "missing organization header")
		return
	}

	var req CreateContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	if req.MemberID == "" {
		WriteValidationError(w, "member_id is required")
		return
	}
	if req.CategoryID <= 0 {
		WriteValidationError(w, "category_id is required")
		return
	}
	if req.Amount <= 0 {
		WriteValidationError(w, "amount must be positive")
		return
	}

	givenAt := time.Now()
	if req.GivenAt != nil {
		givenAt = *req.GivenAt
	}

	contribution := &models.Contribution{
		TenantID:   tenant,
		MemberID:   req.MemberID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		GivenAt:    givenAt,
	}

	if err := h.contributionRepo.Create(r.Context(), contribution); err != nil {
		HandleServiceError(w, err)
		return
	}

	// The notification is best-effort: it can never fail the contribution
	h.triggers.HandleContribution(r.Context(), contribution)

	WriteCreated(w, contribution)
}
