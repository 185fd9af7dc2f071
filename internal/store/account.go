package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/domain"
)

// AccountStore defines the interface for account persistence.
type AccountStore interface {
	// GetOrCreate looks up an account by username and inserts the provided
	// account when none exists. The caller must have hashed and set
	// HashedPassword before calling; it is only written on insert.
	// Returns the stored account and whether it was newly created.
	GetOrCreate(ctx context.Context, account *domain.Account) (*domain.Account, bool, error)

	// GetByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByUsername retrieves an account by its username.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// Update overwrites an existing account's name and email fields.
	// The password hash is never touched by Update.
	// Returns ErrAccountNotFound if the account does not exist.
	Update(ctx context.Context, account *domain.Account) error

	// WithTx returns an AccountStore bound to the provided transaction so
	// several operations can share one atomic unit.
	WithTx(tx *sql.Tx) AccountStore
}
