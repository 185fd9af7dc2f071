package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// SettingsHandler handles the site-wide settings record.
type SettingsHandler struct {
	settings store.SettingsStore
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get handles GET /settings. A missing record yields the defaults rather
// than a 404 so clients always have something to render.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			RespondWithJSON(w, r, http.StatusOK, domain.DefaultSettings())
			return
		}
		HandleServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, settings)
}

// Save handles PUT /settings, replacing the settings record.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := DecodeJSON(r, &settings); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.settings.Save(r.Context(), &settings); err != nil {
		slog.Error("failed to save settings", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, settings)
}
