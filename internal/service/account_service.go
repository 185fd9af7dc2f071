package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/service/auth"
	"github.com/tsplhq/registration-api/internal/store"
)

// AccountService provides account signup and credential verification.
type AccountService interface {
	// Register creates a new account with a bcrypt-hashed password.
	// Returns store.ErrUsernameExists when the username is taken.
	Register(ctx context.Context, username, password, firstName, lastName, email string) (*domain.Account, error)

	// Authenticate verifies a username/password pair.
	// Returns ErrInvalidCredentials when either is wrong.
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)

	// Get retrieves an account by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// AccountServiceImpl implements the AccountService interface.
type AccountServiceImpl struct {
	accounts store.AccountStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

var _ AccountService = (*AccountServiceImpl)(nil)

// NewAccountService creates a new AccountService.
func NewAccountService(
	accounts store.AccountStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AccountServiceImpl {
	return &AccountServiceImpl{
		accounts: accounts,
		hasher:   hasher,
		verifier: verifier,
		logger:   logger.With("component", "account_service"),
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AccountServiceImpl) Register(ctx context.Context, username, password, firstName, lastName, email string) (*domain.Account, error) {
	account, err := domain.NewAccount(username, firstName, lastName, email)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account.HashedPassword = hashed

	stored, created, err := s.accounts.GetOrCreate(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if !created {
		return nil, store.ErrUsernameExists
	}

	s.logger.Info("account created", "username", username, "account_id", stored.ID)
	return stored, nil
}

// Authenticate verifies a username/password pair. A missing account and a
// wrong password are indistinguishable to the caller.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up account: %w", err)
	}

	if err := s.verifier.Compare(account.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "username", username)
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// Get retrieves an account by ID.
func (s *AccountServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, id)
}
