package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tsplhq/registration-api/internal/service"
)

// PaymentHandler handles payment order and gateway callback requests.
type PaymentHandler struct {
	payments  service.PaymentService
	validator *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		payments:  payments,
		validator: validator.New(),
	}
}

// CreateOrder handles POST /payments/orders, raising a gateway order for
// the caller's registration.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateOrderRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	pay, err := h.payments.CreateOrder(r.Context(), accountID, req.RegistrationID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, OrderResponse{
		OrderID:  pay.OrderID,
		Amount:   pay.Amount,
		Currency: pay.Currency,
	})
}

// Callback handles POST /payments/callback, verifying the gateway signature
// and settling the payment.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	accountID, ok := getAccountIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req PaymentCallbackRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err := h.payments.HandleCallback(r.Context(), accountID, req.RegistrationID,
		req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "paid"})
}
