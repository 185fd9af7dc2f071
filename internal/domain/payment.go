package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment order.
type PaymentStatus string

// Payment status values.
const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment tracks a gateway order raised for one registration. A registration
// may accumulate several payments when earlier attempts fail.
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	AccountID      uuid.UUID     `json:"account_id"`
	RegistrationID uuid.UUID     `json:"registration_id"`
	OrderID        string        `json:"order_id"`
	ReceiptID      string        `json:"recpt_id"`
	Currency       string        `json:"currency"`
	Amount         int           `json:"amount"`
	Status         PaymentStatus `json:"status"`

	// PaymentID and Signature are set by the gateway callback.
	PaymentID string `json:"payment_id,omitempty"`
	Signature string `json:"-"`

	IsCompleted bool      `json:"is_compleated"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPayment creates a pending Payment for a registration.
func NewPayment(accountID, registrationID uuid.UUID, amount int) (*Payment, error) {
	payment := &Payment{
		ID:             uuid.New(),
		AccountID:      accountID,
		RegistrationID: registrationID,
		Currency:       "INR",
		Amount:         amount,
		Status:         PaymentStatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	return payment, nil
}

// Validate checks the payment for structurally invalid data.
func (p *Payment) Validate() error {
	if p.AccountID == uuid.Nil || p.RegistrationID == uuid.Nil {
		return ErrEmptyAccountID
	}
	if p.Amount < 0 {
		return ErrInvalidAmount
	}
	switch p.Status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
	default:
		return ErrUnknownPayStatus
	}
	return nil
}

// DisplayAmount converts the order amount from paise to rupees.
func (p *Payment) DisplayAmount() float64 {
	return float64(p.Amount) / 100
}
