package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/domain"
)

// MailFilter narrows a registration listing by mail-sent state.
type MailFilter string

// Mail filter values accepted by ListBySeason.
const (
	MailFilterAll    MailFilter = "all"
	MailFilterSent   MailFilter = "sent"
	MailFilterUnsent MailFilter = "unsent"
)

// RegistrationQuery describes a filtered season listing.
type RegistrationQuery struct {
	SeasonID uuid.UUID

	// Search matches reg_id, username or player name, case-insensitively.
	Search string

	MailFilter MailFilter
}

// RegistrationStore defines the interface for registration persistence.
//
// Reg-ID assignment: when a registration is inserted with an empty RegID the
// store assigns TSPL{MM}{YY}{seq:04d}, where seq is the count of existing
// registrations for the season plus one. The count and the insert execute in
// the same transaction; a unique-constraint violation on (season, reg_id)
// triggers a retry with a recomputed sequence, which guards concurrent live
// registrations.
type RegistrationStore interface {
	// Create inserts a new registration, assigning its RegID when empty.
	Create(ctx context.Context, reg *domain.Registration) error

	// Upsert writes a registration keyed by its (season, reg_id) natural
	// key: inserts when absent, overwrites descriptive fields when present.
	// Returns the stored registration and whether it was newly created.
	Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, bool, error)

	// GetByID retrieves a registration by its unique ID.
	// Returns ErrRegistrationNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Registration, error)

	// GetBySeasonAndAccount retrieves the account's registration for a
	// season, if any. Returns ErrRegistrationNotFound when absent.
	GetBySeasonAndAccount(ctx context.Context, seasonID, accountID uuid.UUID) (*domain.Registration, error)

	// ListBySeason returns a season's registrations matching the query,
	// newest first.
	ListBySeason(ctx context.Context, query RegistrationQuery) ([]*domain.Registration, error)

	// CountBySeason returns the number of registrations in a season.
	CountBySeason(ctx context.Context, seasonID uuid.UUID) (int, error)

	// Update overwrites an existing registration's mutable fields.
	// Returns ErrRegistrationNotFound if it does not exist.
	Update(ctx context.Context, reg *domain.Registration) error

	// MarkMailSent flags a registration's confirmation mail as delivered.
	MarkMailSent(ctx context.Context, id uuid.UUID) error

	// WithTx returns a RegistrationStore bound to the provided transaction.
	WithTx(tx *sql.Tx) RegistrationStore
}
