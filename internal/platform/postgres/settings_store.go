package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// PostgresSettingsStore implements the store.SettingsStore interface. The
// settings table holds at most one row, keyed by a fixed singleton marker.
type PostgresSettingsStore struct {
	db store.DBTX
}

// Ensure PostgresSettingsStore implements store.SettingsStore
var _ store.SettingsStore = (*PostgresSettingsStore)(nil)

// NewPostgresSettingsStore creates a new PostgreSQL implementation of the
// SettingsStore interface.
func NewPostgresSettingsStore(db store.DBTX) *PostgresSettingsStore {
	return &PostgresSettingsStore{db: db}
}

// WithTx returns a SettingsStore bound to the provided transaction.
func (s *PostgresSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore {
	return &PostgresSettingsStore{db: tx}
}

const settingsColumns = `id, enable_registration, current_season_id, show_points_table, enable_results,
	alert_message, razorpay_key_id, razorpay_key_secret, callback_url, points_table_url, created_at`

// Get implements store.SettingsStore.Get
func (s *PostgresSettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings ORDER BY created_at DESC LIMIT 1`

	var settings domain.Settings
	err := s.db.QueryRowContext(ctx, query).Scan(
		&settings.ID,
		&settings.EnableRegistration,
		&settings.CurrentSeasonID,
		&settings.ShowPointsTable,
		&settings.EnableResults,
		&settings.AlertMessage,
		&settings.RazorpayKeyID,
		&settings.RazorpayKeySecret,
		&settings.CallbackURL,
		&settings.PointsTableURL,
		&settings.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings: %w", MapError(err))
	}
	return &settings, nil
}

// Save implements store.SettingsStore.Save
func (s *PostgresSettingsStore) Save(ctx context.Context, settings *domain.Settings) error {
	query := `INSERT INTO settings (` + settingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			enable_registration = EXCLUDED.enable_registration,
			current_season_id = EXCLUDED.current_season_id,
			show_points_table = EXCLUDED.show_points_table,
			enable_results = EXCLUDED.enable_results,
			alert_message = EXCLUDED.alert_message,
			razorpay_key_id = EXCLUDED.razorpay_key_id,
			razorpay_key_secret = EXCLUDED.razorpay_key_secret,
			callback_url = EXCLUDED.callback_url,
			points_table_url = EXCLUDED.points_table_url`

	_, err := s.db.ExecContext(ctx, query,
		settings.ID,
		settings.EnableRegistration,
		settings.CurrentSeasonID,
		settings.ShowPointsTable,
		settings.EnableResults,
		settings.AlertMessage,
		settings.RazorpayKeyID,
		settings.RazorpayKeySecret,
		settings.CallbackURL,
		settings.PointsTableURL,
		settings.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", MapError(err))
	}
	return nil
}
