// Package payment integrates the Razorpay-style payment gateway: raising
// orders for registration fees and verifying the signature the gateway
// attaches to its payment callback.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tsplhq/registration-api/internal/config"
)

// Common gateway errors.
var (
	ErrMissingCredentials = errors.New("payment gateway credentials not configured")
	ErrOrderFailed        = errors.New("payment gateway rejected the order")
)

// Order is a gateway order raised for one registration fee.
type Order struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway defines the payment gateway operations the services depend on.
type Gateway interface {
	// CreateOrder raises an order for the given amount in the smallest
	// currency unit.
	CreateOrder(ctx context.Context, amount int, currency, receipt string) (*Order, error)

	// VerifySignature checks the callback signature for an order/payment
	// pair.
	VerifySignature(orderID, paymentID, signature string) bool
}

// razorpayGateway talks to the Razorpay orders API over HTTPS with basic
// auth.
type razorpayGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

var _ Gateway = (*razorpayGateway)(nil)

const defaultBaseURL = "https://api.razorpay.com"

// NewRazorpayGateway creates a gateway client from the payment config.
func NewRazorpayGateway(cfg config.PaymentConfig) (Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, ErrMissingCredentials
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &razorpayGateway{
		baseURL:   baseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateOrder implements Gateway.CreateOrder
func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int, currency, receipt string) (*Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrOrderFailed, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	return &order, nil
}

// VerifySignature implements Gateway.VerifySignature. The expected signature
// is HMAC-SHA256 over "orderID|paymentID" keyed with the secret, hex encoded.
func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
