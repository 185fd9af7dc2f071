package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/domain"
)

// SeasonStore defines the interface for season persistence.
type SeasonStore interface {
	// Create saves a new season.
	Create(ctx context.Context, season *domain.Season) error

	// GetByID retrieves a season by its unique ID.
	// Returns ErrSeasonNotFound if the season does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Season, error)

	// List returns all seasons, newest first.
	List(ctx context.Context) ([]*domain.Season, error)

	// WithTx returns a SeasonStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SeasonStore
}
