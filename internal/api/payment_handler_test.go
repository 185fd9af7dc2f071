package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/service"
)

type fakePaymentService struct {
	order     *domain.Payment
	err       error
	settled   bool
	orderID   string
	payID     string
	signature string
}

var _ service.PaymentService = (*fakePaymentService)(nil)

func (f *fakePaymentService) CreateOrder(_ context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	pay, err := domain.NewPayment(accountID, registrationID, 50000)
	if err != nil {
		return nil, err
	}
	pay.OrderID = "order_test123"
	f.order = pay
	return pay, nil
}

func (f *fakePaymentService) HandleCallback(_ context.Context, _, _ uuid.UUID, orderID, paymentID, signature string) error {
	if f.err != nil {
		return f.err
	}
	f.settled = true
	f.orderID = orderID
	f.payID = paymentID
	f.signature = signature
	return nil
}

func TestPaymentHandler_CreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("raises order for registration", func(t *testing.T) {
		t.Parallel()

		handler := NewPaymentHandler(&fakePaymentService{})

		req := newJSONRequest(t, http.MethodPost, "/payments/orders", CreateOrderRequest{
			RegistrationID: uuid.New(),
		})
		req = withAccountID(req, uuid.New())

		rec := httptest.NewRecorder()
		handler.CreateOrder(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeBody[OrderResponse](t, rec)
		assert.Equal(t, "order_test123", resp.OrderID)
		assert.Equal(t, 50000, resp.Amount)
		assert.Equal(t, "INR", resp.Currency)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewPaymentHandler(&fakePaymentService{})

		req := newJSONRequest(t, http.MethodPost, "/payments/orders", CreateOrderRequest{
			RegistrationID: uuid.New(),
		})

		rec := httptest.NewRecorder()
		handler.CreateOrder(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPaymentHandler_Callback(t *testing.T) {
	t.Parallel()

	t.Run("valid callback settles payment", func(t *testing.T) {
		t.Parallel()

		payments := &fakePaymentService{}
		handler := NewPaymentHandler(payments)

		req := newJSONRequest(t, http.MethodPost, "/payments/callback", PaymentCallbackRequest{
			RegistrationID: uuid.New(),
			OrderID:        "order_test123",
			PaymentID:      "pay_XYZ",
			Signature:      "deadbeef",
		})
		req = withAccountID(req, uuid.New())

		rec := httptest.NewRecorder()
		handler.Callback(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, payments.settled)
		assert.Equal(t, "pay_XYZ", payments.payID)
	})

	t.Run("invalid signature is a bad request", func(t *testing.T) {
		t.Parallel()

		handler := NewPaymentHandler(&fakePaymentService{err: service.ErrInvalidSignature})

		req := newJSONRequest(t, http.MethodPost, "/payments/callback", PaymentCallbackRequest{
			RegistrationID: uuid.New(),
			OrderID:        "order_test123",
			PaymentID:      "pay_XYZ",
			Signature:      "tampered",
		})
		req = withAccountID(req, uuid.New())

		rec := httptest.NewRecorder()
		handler.Callback(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("incomplete payload is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewPaymentHandler(&fakePaymentService{})

		req := newJSONRequest(t, http.MethodPost, "/payments/callback", PaymentCallbackRequest{
			RegistrationID: uuid.New(),
		})
		req = withAccountID(req, uuid.New())

		rec := httptest.NewRecorder()
		handler.Callback(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
