package store

import (
	"context"
	"database/sql"

	"github.com/tsplhq/registration-api/internal/domain"
)

// SettingsStore defines the interface for the general settings record.
type SettingsStore interface {
	// Get returns the settings record.
	// Returns ErrSettingsNotFound when none has been created yet.
	Get(ctx context.Context) (*domain.Settings, error)

	// Save inserts or replaces the settings record.
	Save(ctx context.Context, settings *domain.Settings) error

	// WithTx returns a SettingsStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SettingsStore
}
