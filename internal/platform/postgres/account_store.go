package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// PostgresAccountStore implements the store.AccountStore interface using a
// PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db store.DBTX
}

// Ensure PostgresAccountStore implements store.AccountStore
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// NewPostgresAccountStore creates a new PostgreSQL implementation of the
// AccountStore interface. The connection is initialized and managed by the
// caller.
func NewPostgresAccountStore(db store.DBTX) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

// WithTx returns an AccountStore bound to the provided transaction.
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return &PostgresAccountStore{db: tx}
}

const accountColumns = `id, username, first_name, last_name, email, hashed_password, is_admin, created_at, updated_at`

// GetOrCreate implements store.AccountStore.GetOrCreate. A concurrent insert
// of the same username surfaces as a unique violation, which is resolved by
// re-reading the winner's row.
func (s *PostgresAccountStore) GetOrCreate(ctx context.Context, account *domain.Account) (*domain.Account, bool, error) {
	existing, err := s.GetByUsername(ctx, account.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrAccountNotFound) {
		return nil, false, err
	}

	insert := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, insert,
		account.ID,
		account.Username,
		account.FirstName,
		account.LastName,
		account.Email,
		account.HashedPassword,
		account.IsAdmin,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			// Lost the race; the username now exists.
			winner, getErr := s.GetByUsername(ctx, account.Username)
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("create account: %w", MapError(err))
	}

	return account, true, nil
}

// GetByID implements store.AccountStore.GetByID
func (s *PostgresAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// GetByUsername implements store.AccountStore.GetByUsername
func (s *PostgresAccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return s.scanAccount(s.db.QueryRowContext(ctx, query, username))
}

// Update implements store.AccountStore.Update. The password hash is never
// written by Update.
func (s *PostgresAccountStore) Update(ctx context.Context, account *domain.Account) error {
	query := `UPDATE accounts
		SET first_name = $1, last_name = $2, email = $3, updated_at = $4
		WHERE id = $5`

	result, err := s.db.ExecContext(ctx, query,
		account.FirstName,
		account.LastName,
		account.Email,
		time.Now().UTC(),
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

func (s *PostgresAccountStore) scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.HashedPassword,
		&account.IsAdmin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", MapError(err))
	}
	return &account, nil
}
