package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/domain"
)

// PaymentStore defines the interface for payment persistence.
type PaymentStore interface {
	// Create saves a new payment order.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its unique ID.
	// Returns ErrPaymentNotFound if the payment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)

	// GetLatestForRegistration retrieves the most recent payment raised for
	// the account/registration pair. Returns ErrPaymentNotFound when none
	// exists.
	GetLatestForRegistration(ctx context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error)

	// Update overwrites a payment's status, gateway references and
	// completion flag. Returns ErrPaymentNotFound if it does not exist.
	Update(ctx context.Context, payment *domain.Payment) error

	// WithTx returns a PaymentStore bound to the provided transaction.
	WithTx(tx *sql.Tx) PaymentStore
}
