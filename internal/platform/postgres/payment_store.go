package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// PostgresPaymentStore implements the store.PaymentStore interface using a
// PostgreSQL database as the storage backend.
type PostgresPaymentStore struct {
	db store.DBTX
}

// Ensure PostgresPaymentStore implements store.PaymentStore
var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// NewPostgresPaymentStore creates a new PostgreSQL implementation of the
// PaymentStore interface.
func NewPostgresPaymentStore(db store.DBTX) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

// WithTx returns a PaymentStore bound to the provided transaction.
func (s *PostgresPaymentStore) WithTx(tx *sql.Tx) store.PaymentStore {
	return &PostgresPaymentStore{db: tx}
}

const paymentColumns = `id, account_id, registration_id, order_id, receipt_id, currency, amount,
	status, payment_id, signature, is_completed, created_at`

// Create implements store.PaymentStore.Create
func (s *PostgresPaymentStore) Create(ctx context.Context, payment *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query,
		payment.ID,
		payment.AccountID,
		payment.RegistrationID,
		payment.OrderID,
		payment.ReceiptID,
		payment.Currency,
		payment.Amount,
		payment.Status,
		payment.PaymentID,
		payment.Signature,
		payment.IsCompleted,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.PaymentStore.GetByID
func (s *PostgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return s.scanPayment(s.db.QueryRowContext(ctx, query, id))
}

// GetLatestForRegistration implements store.PaymentStore.GetLatestForRegistration
func (s *PostgresPaymentStore) GetLatestForRegistration(ctx context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE account_id = $1 AND registration_id = $2
		ORDER BY created_at DESC LIMIT 1`
	return s.scanPayment(s.db.QueryRowContext(ctx, query, accountID, registrationID))
}

// Update implements store.PaymentStore.Update
func (s *PostgresPaymentStore) Update(ctx context.Context, payment *domain.Payment) error {
	query := `UPDATE payments
		SET status = $1, payment_id = $2, signature = $3, is_completed = $4
		WHERE id = $5`

	result, err := s.db.ExecContext(ctx, query,
		payment.Status,
		payment.PaymentID,
		payment.Signature,
		payment.IsCompleted,
		payment.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrPaymentNotFound)
}

func (s *PostgresPaymentStore) scanPayment(row *sql.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.AccountID,
		&payment.RegistrationID,
		&payment.OrderID,
		&payment.ReceiptID,
		&payment.Currency,
		&payment.Amount,
		&payment.Status,
		&payment.PaymentID,
		&payment.Signature,
		&payment.IsCompleted,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", MapError(err))
	}
	return &payment, nil
}
