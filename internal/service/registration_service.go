package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// RegistrationInput carries the player-entered fields of a live
// registration.
type RegistrationInput struct {
	PlayerName      string
	FatherName      string
	DOB             string
	Gender          string
	TShirtSize      string
	Occupation      string
	Mobile          string
	Whatsapp        string
	Email           string
	AdharCard       string
	PlayerImage     string
	District        string
	PinCode         int
	Address         string
	FirstPreference string
	BattingArm      string
	Role            string
}

// RegistrationService provides live registration and season listing
// operations.
type RegistrationService interface {
	// Register creates a registration for the account in the season,
	// assigning its reg-ID. Returns ErrRegistrationClosed when the season
	// is not accepting responses or the settings switch disables
	// registration, and ErrAlreadyRegistered when the account already has
	// one.
	Register(ctx context.Context, seasonID, accountID uuid.UUID, input RegistrationInput) (*domain.Registration, error)

	// Update overwrites the player-entered fields of the account's existing
	// registration. Returns ErrFormNotEditable when the season has locked
	// its forms.
	Update(ctx context.Context, seasonID, accountID uuid.UUID, input RegistrationInput) (*domain.Registration, error)

	// Get retrieves a registration by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.Registration, error)

	// GetForAccount retrieves the account's registration in a season.
	GetForAccount(ctx context.Context, seasonID, accountID uuid.UUID) (*domain.Registration, error)

	// List returns a season's registrations matching the query.
	List(ctx context.Context, query store.RegistrationQuery) ([]*domain.Registration, error)

	// ExportCSV renders a season's registrations in the ingestion CSV
	// format, so an exported season can be re-imported unchanged.
	ExportCSV(ctx context.Context, seasonID uuid.UUID) ([]byte, error)
}

// RegistrationServiceImpl implements the RegistrationService interface.
type RegistrationServiceImpl struct {
	db            *sql.DB
	seasons       store.SeasonStore
	accounts      store.AccountStore
	registrations store.RegistrationStore
	settings      store.SettingsStore
	logger        *slog.Logger
}

var _ RegistrationService = (*RegistrationServiceImpl)(nil)

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	db *sql.DB,
	seasons store.SeasonStore,
	accounts store.AccountStore,
	registrations store.RegistrationStore,
	settings store.SettingsStore,
	logger *slog.Logger,
) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		db:            db,
		seasons:       seasons,
		accounts:      accounts,
		registrations: registrations,
		settings:      settings,
		logger:        logger.With("component", "registration_service"),
	}
}

// registrationEnabled checks the global settings switch. A missing settings
// record is the default state and leaves registration open.
func (s *RegistrationServiceImpl) registrationEnabled(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if errors.Is(err, store.ErrSettingsNotFound) {
		return domain.DefaultSettings().EnableRegistration, nil
	}
	if err != nil {
		return false, err
	}
	return settings.EnableRegistration, nil
}

// Register creates a registration for the account in the season. The season
// must accept responses and the global settings switch must be on.
func (s *RegistrationServiceImpl) Register(ctx context.Context, seasonID, accountID uuid.UUID, input RegistrationInput) (*domain.Registration, error) {
	season, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if !season.AcceptResponse {
		return nil, ErrRegistrationClosed
	}
	enabled, err := s.registrationEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrRegistrationClosed
	}

	_, err = s.registrations.GetBySeasonAndAccount(ctx, seasonID, accountID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, store.ErrRegistrationNotFound) {
		return nil, err
	}

	reg := domain.NewRegistration(seasonID, accountID)
	reg.Category = domain.Category21AndAbove
	applyInput(reg, input)

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// The store assigns the reg-ID inside the insert's transaction and
	// retries on a natural-key collision with a concurrent registration.
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.Info("registration created",
		"reg_id", reg.RegID,
		"season_id", seasonID,
		"account_id", accountID)
	return reg, nil
}

// applyInput copies the player-entered fields onto a registration and
// recomputes the derived age and zone.
func applyInput(reg *domain.Registration, input RegistrationInput) {
	reg.PlayerName = input.PlayerName
	reg.FatherName = input.FatherName
	reg.Age = domain.CalculateAge(input.DOB, time.Now())
	reg.DOB = input.DOB
	reg.Gender = input.Gender
	reg.TShirtSize = input.TShirtSize
	reg.Occupation = input.Occupation
	reg.Mobile = input.Mobile
	reg.Whatsapp = input.Whatsapp
	reg.Email = input.Email
	reg.AdharCard = input.AdharCard
	reg.PlayerImage = input.PlayerImage
	reg.District = input.District
	reg.PinCode = input.PinCode
	reg.Address = input.Address
	reg.FirstPreference = input.FirstPreference
	reg.BattingArm = input.BattingArm
	reg.Role = input.Role
	reg.ApplyZone()
}

// Update overwrites the player-entered fields of the account's existing
// registration for the season. The reg-ID, payment state and selection
// flags are untouched.
func (s *RegistrationServiceImpl) Update(ctx context.Context, seasonID, accountID uuid.UUID, input RegistrationInput) (*domain.Registration, error) {
	season, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if !season.FormEditable {
		return nil, ErrFormNotEditable
	}

	reg, err := s.registrations.GetBySeasonAndAccount(ctx, seasonID, accountID)
	if err != nil {
		return nil, err
	}

	applyInput(reg, input)

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}

	s.logger.Info("registration updated",
		"reg_id", reg.RegID,
		"season_id", seasonID,
		"account_id", accountID)
	return reg, nil
}

// Get retrieves a registration by ID.
func (s *RegistrationServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	return s.registrations.GetByID(ctx, id)
}

// GetForAccount retrieves the account's registration in a season.
func (s *RegistrationServiceImpl) GetForAccount(ctx context.Context, seasonID, accountID uuid.UUID) (*domain.Registration, error) {
	return s.registrations.GetBySeasonAndAccount(ctx, seasonID, accountID)
}

// List returns a season's registrations matching the query.
func (s *RegistrationServiceImpl) List(ctx context.Context, query store.RegistrationQuery) ([]*domain.Registration, error) {
	return s.registrations.ListBySeason(ctx, query)
}

// exportHeader matches the ingestion pipeline's expected columns exactly.
var exportHeader = []string{
	"reg_id", "user__username", "player_name", "father_name", "dob", "gender",
	"tshirt_size", "occupation", "mobile", "wathsapp_number", "email",
	"adhar_card", "player_image", "district", "zone", "pin_code", "address",
	"first_preference", "batting_arm", "role", "is_paid", "tx_id",
	"is_selected", "points",
}

// ExportCSV renders a season's registrations in the ingestion CSV format.
func (s *RegistrationServiceImpl) ExportCSV(ctx context.Context, seasonID uuid.UUID) ([]byte, error) {
	regs, err := s.registrations.ListBySeason(ctx, store.RegistrationQuery{SeasonID: seasonID})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, reg := range regs {
		account, err := s.accounts.GetByID(ctx, reg.AccountID)
		if err != nil {
			return nil, fmt.Errorf("resolve account for %s: %w", reg.RegID, err)
		}

		record := []string{
			reg.RegID, account.Username, reg.PlayerName, reg.FatherName,
			reg.DOB, reg.Gender, reg.TShirtSize, reg.Occupation, reg.Mobile,
			reg.Whatsapp, reg.Email, reg.AdharCard, reg.PlayerImage,
			reg.District, reg.Zone, strconv.Itoa(reg.PinCode), reg.Address,
			reg.FirstPreference, reg.BattingArm, reg.Role,
			boolFlag(reg.IsCompleted), reg.TxID, boolFlag(reg.IsSelected),
			strconv.Itoa(reg.Points),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
