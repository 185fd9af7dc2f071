package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsplhq/registration-api/internal/config"
)

func TestNewRazorpayGateway_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewRazorpayGateway(config.PaymentConfig{KeyID: "rzp_test"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 50000, body["amount"])
		assert.Equal(t, "INR", body["currency"])

		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_ABC123",
			Amount:   50000,
			Currency: "INR",
			Receipt:  "rcpt_1",
			Status:   "created",
		})
	}))
	defer srv.Close()

	gw, err := NewRazorpayGateway(config.PaymentConfig{
		BaseURL:   srv.URL,
		KeyID:     "rzp_test",
		KeySecret: "secret",
	})
	require.NoError(t, err)

	order, err := gw.CreateOrder(context.Background(), 50000, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_ABC123", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestRazorpayGateway_CreateOrder_GatewayRejects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	gw, err := NewRazorpayGateway(config.PaymentConfig{
		BaseURL:   srv.URL,
		KeyID:     "rzp_test",
		KeySecret: "secret",
	})
	require.NoError(t, err)

	_, err = gw.CreateOrder(context.Background(), 50000, "INR", "rcpt_1")
	assert.ErrorIs(t, err, ErrOrderFailed)
}

func TestRazorpayGateway_VerifySignature(t *testing.T) {
	t.Parallel()

	gw, err := NewRazorpayGateway(config.PaymentConfig{KeyID: "rzp_test", KeySecret: "secret"})
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_ABC123|pay_XYZ789"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, gw.VerifySignature("order_ABC123", "pay_XYZ789", valid))
	assert.False(t, gw.VerifySignature("order_ABC123", "pay_XYZ789", "tampered"))
	assert.False(t, gw.VerifySignature("order_other", "pay_XYZ789", valid))
}
