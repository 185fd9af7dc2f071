package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// SeasonHandler handles season management API requests.
type SeasonHandler struct {
	seasons   store.SeasonStore
	validator *validator.Validate
}

// NewSeasonHandler creates a new SeasonHandler.
func NewSeasonHandler(seasons store.SeasonStore) *SeasonHandler {
	return &SeasonHandler{
		seasons:   seasons,
		validator: validator.New(),
	}
}

// List handles GET /seasons.
func (h *SeasonHandler) List(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.seasons.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, seasons)
}

// Get handles GET /seasons/{seasonID}.
func (h *SeasonHandler) Get(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	season, err := h.seasons.GetByID(r.Context(), seasonID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, r, http.StatusOK, season)
}

// Create handles POST /seasons.
func (h *SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSeasonRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	season, err := domain.NewSeason(req.Title, req.Year, start, end, req.Amount)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season data: "+err.Error())
		return
	}

	if err := h.seasons.Create(r.Context(), season); err != nil {
		slog.Error("failed to create season", "error", err, "title", req.Title)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create season")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, season)
}
