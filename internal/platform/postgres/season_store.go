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

// PostgresSeasonStore implements the store.SeasonStore interface using a
// PostgreSQL database as the storage backend.
type PostgresSeasonStore struct {
	db store.DBTX
}

// Ensure PostgresSeasonStore implements store.SeasonStore
var _ store.SeasonStore = (*PostgresSeasonStore)(nil)

// NewPostgresSeasonStore creates a new PostgreSQL implementation of the
// SeasonStore interface.
func NewPostgresSeasonStore(db store.DBTX) *PostgresSeasonStore {
	return &PostgresSeasonStore{db: db}
}

// WithTx returns a SeasonStore bound to the provided transaction.
func (s *PostgresSeasonStore) WithTx(tx *sql.Tx) store.SeasonStore {
	return &PostgresSeasonStore{db: tx}
}

const seasonColumns = `id, title, year, start_date, end_date, amount, accept_response, form_editable, created_at, updated_at`

// Create implements store.SeasonStore.Create
func (s *PostgresSeasonStore) Create(ctx context.Context, season *domain.Season) error {
	query := `INSERT INTO seasons (` + seasonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		season.ID,
		season.Title,
		season.Year,
		season.StartDate,
		season.EndDate,
		season.Amount,
		season.AcceptResponse,
		season.FormEditable,
		season.CreatedAt,
		season.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create season: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.SeasonStore.GetByID
func (s *PostgresSeasonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE id = $1`

	var season domain.Season
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&season.ID,
		&season.Title,
		&season.Year,
		&season.StartDate,
		&season.EndDate,
		&season.Amount,
		&season.AcceptResponse,
		&season.FormEditable,
		&season.CreatedAt,
		&season.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSeasonNotFound
		}
		return nil, fmt.Errorf("get season: %w", MapError(err))
	}
	return &season, nil
}

// List implements store.SeasonStore.List
func (s *PostgresSeasonStore) List(ctx context.Context) ([]*domain.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var seasons []*domain.Season
	for rows.Next() {
		var season domain.Season
		if err := rows.Scan(
			&season.ID,
			&season.Title,
			&season.Year,
			&season.StartDate,
			&season.EndDate,
			&season.Amount,
			&season.AcceptResponse,
			&season.FormEditable,
			&season.CreatedAt,
			&season.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan season: %w", MapError(err))
		}
		seasons = append(seasons, &season)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", MapError(err))
	}

	return seasons, nil
}
