package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tsplhq/registration-api/internal/service"
	"github.com/tsplhq/registration-api/internal/store"
)

// RegistrationHandler handles live registration API requests.
type RegistrationHandler struct {
	registrations service.RegistrationService
	validator     *validator.Validate
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrations service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		validator:     validator.New(),
	}
}

// Create handles POST /seasons/{seasonID}/registrations.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	var req CreateRegistrationRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	reg, err := h.registrations.Register(r.Context(), seasonID, accountID, req.toInput())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, reg)
}

// Update handles PUT /seasons/{seasonID}/registrations/me, overwriting the
// caller's registration while the season keeps its forms editable.
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	var req CreateRegistrationRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	reg, err := h.registrations.Update(r.Context(), seasonID, accountID, req.toInput())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, reg)
}

// GetMine handles GET /seasons/{seasonID}/registrations/me.
func (h *RegistrationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	reg, err := h.registrations.GetForAccount(r.Context(), seasonID, accountID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, reg)
}

// List handles GET /seasons/{seasonID}/registrations with optional search
// and mail-filter query parameters.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	query := store.RegistrationQuery{
		SeasonID:   seasonID,
		Search:     r.URL.Query().Get("search"),
		MailFilter: store.MailFilter(r.URL.Query().Get("mail_filter")),
	}

	regs, err := h.registrations.List(r.Context(), query)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, regs)
}

// Export handles GET /seasons/{seasonID}/registrations/export, streaming the
// season's registrations as CSV in the same column layout ingestion accepts.
func (h *RegistrationHandler) Export(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	data, err := h.registrations.ExportCSV(r.Context(), seasonID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=registrations-%s.csv", seasonID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write CSV export", "error", err, "season_id", seasonID)
	}
}
