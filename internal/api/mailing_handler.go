package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tsplhq/registration-api/internal/service"
	"github.com/tsplhq/registration-api/internal/store"
)

// MailingHandler handles bulk mailing trigger requests. Mailings run
// asynchronously on the bulk mail pool; the handler acknowledges acceptance
// with the resolved recipient count.
type MailingHandler struct {
	mailings  service.MailingService
	validator *validator.Validate
}

// NewMailingHandler creates a new MailingHandler.
func NewMailingHandler(mailings service.MailingService) *MailingHandler {
	return &MailingHandler{
		mailings:  mailings,
		validator: validator.New(),
	}
}

// Send handles POST /seasons/{seasonID}/mailings.
func (h *MailingHandler) Send(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := getPathUUID(r, "seasonID")
	if !ok {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid season ID")
		return
	}

	var req MailingRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	kind := service.MailingKindGeneral
	if req.Kind == string(service.MailingKindResults) {
		kind = service.MailingKindResults
	}

	count, err := h.mailings.SendBulk(r.Context(), service.MailingInput{
		SeasonID:    seasonID,
		Subject:     req.Subject,
		Template:    req.Template,
		Text:        req.Text,
		Search:      req.Search,
		MailFilter:  store.MailFilter(req.MailFilter),
		SelectedIDs: req.SelectedIDs,
		Kind:        kind,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{
		Status:     "accepted",
		Recipients: count,
	})
}
