package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
)

// Importer dependency errors.
var (
	ErrNilSeasonResolver     = errors.New("season resolver cannot be nil")
	ErrNilAccountWriter      = errors.New("account writer cannot be nil")
	ErrNilRegistrationWriter = errors.New("registration writer cannot be nil")
	ErrNilHasher             = errors.New("password hasher cannot be nil")
	ErrNilLogger             = errors.New("logger cannot be nil")
)

// SeasonResolver looks up the season an ingestion job targets.
type SeasonResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Season, error)
}

// AccountWriter persists accounts derived from CSV rows.
type AccountWriter interface {
	GetOrCreate(ctx context.Context, account *domain.Account) (*domain.Account, bool, error)
	Update(ctx context.Context, account *domain.Account) error
}

// RegistrationWriter upserts registrations by their (season, reg_id) key.
type RegistrationWriter interface {
	Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, bool, error)
}

// PasswordHasher one-way hashes the derived password for newly created
// accounts.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// Importer runs ingestion jobs against the record store. It holds no mutable
// state of its own; serialization comes from the single-slot worker pool
// that executes its jobs.
type Importer struct {
	seasons       SeasonResolver
	accounts      AccountWriter
	registrations RegistrationWriter
	hasher        PasswordHasher
	logger        *slog.Logger

	// now is replaceable for deterministic age computation in tests.
	now func() time.Time
}

// NewImporter creates an Importer, validating all dependencies.
func NewImporter(
	seasons SeasonResolver,
	accounts AccountWriter,
	registrations RegistrationWriter,
	hasher PasswordHasher,
	logger *slog.Logger,
) (*Importer, error) {
	if seasons == nil {
		return nil, ErrNilSeasonResolver
	}
	if accounts == nil {
		return nil, ErrNilAccountWriter
	}
	if registrations == nil {
		return nil, ErrNilRegistrationWriter
	}
	if hasher == nil {
		return nil, ErrNilHasher
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Importer{
		seasons:       seasons,
		accounts:      accounts,
		registrations: registrations,
		hasher:        hasher,
		logger:        logger.With("component", "ingest_importer"),
		now:           time.Now,
	}, nil
}

// Run executes one ingestion job. The season must resolve and the points CSV
// must parse cleanly before any row is touched; after that, each primary row
// is isolated: a bad row is logged and skipped, never aborting the run.
func (imp *Importer) Run(ctx context.Context, job Job) (*Summary, error) {
	season, err := imp.seasons.GetByID(ctx, job.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("resolve season %s: %w", job.SeasonID, err)
	}

	var pointsMap map[string]int
	if len(job.PointsData) > 0 {
		pointsMap, err = ParsePoints(job.PointsData)
		if err != nil {
			return nil, fmt.Errorf("parse points csv: %w", err)
		}
	}

	tbl, err := parseTable(job.Data)
	if err != nil {
		return nil, fmt.Errorf("parse primary csv: %w", err)
	}

	logger := imp.logger.With("season_id", season.ID)
	summary := &Summary{}

	for _, record := range tbl.records {
		regID := strings.TrimSpace(tbl.optional(record, colRegID))

		if err := imp.processRow(ctx, season, tbl, record, pointsMap, summary); err != nil {
			logger.Warn("row skipped", "reg_id", regID, "error", err)
			summary.Skipped++
		}
	}

	logger.Info("ingestion run finished", "summary", summary.String())
	return summary, nil
}

// processRow reconciles a single primary-CSV record: get-or-create the
// account, then upsert the registration under its natural key.
func (imp *Importer) processRow(
	ctx context.Context,
	season *domain.Season,
	tbl *table,
	record []string,
	pointsMap map[string]int,
	summary *Summary,
) error {
	regID, err := tbl.getTrimmed(record, colRegID)
	if err != nil {
		return err
	}
	username, err := tbl.getTrimmed(record, colUsername)
	if err != nil {
		return err
	}
	playerName, err := tbl.getTrimmed(record, colPlayerName)
	if err != nil {
		return err
	}
	email, err := tbl.getTrimmed(record, colEmail)
	if err != nil {
		return err
	}
	dob, err := tbl.getTrimmed(record, colDOB)
	if err != nil {
		return err
	}
	mobile, err := tbl.getTrimmed(record, colMobile)
	if err != nil {
		return err
	}

	account, created, err := imp.reconcileAccount(ctx, username, playerName, email, dob, mobile)
	if err != nil {
		return err
	}
	if created {
		summary.AccountsCreated++
	}

	reg, err := imp.buildRegistration(season, account, tbl, record, regID, playerName, dob, mobile, email, pointsMap)
	if err != nil {
		return err
	}

	stored, createdReg, err := imp.registrations.Upsert(ctx, reg)
	if err != nil {
		return err
	}

	if createdReg {
		summary.Created++
		imp.logger.Info("registration created", "reg_id", stored.RegID, "username", username)
	} else {
		summary.Updated++
		imp.logger.Info("registration updated", "reg_id", stored.RegID, "username", username)
	}
	return nil
}

// reconcileAccount gets or creates the row's account. A new account gets the
// password derived from the date of birth and mobile number; an existing one
// has its name and email overwritten and its password left alone.
func (imp *Importer) reconcileAccount(ctx context.Context, username, playerName, email, dob, mobile string) (*domain.Account, bool, error) {
	first, last := domain.SplitPlayerName(playerName)

	account, err := domain.NewAccount(username, first, last, email)
	if err != nil {
		return nil, false, err
	}

	hashed, err := imp.hasher.Hash(ctx, domain.DerivePassword(dob, mobile))
	if err != nil {
		return nil, false, fmt.Errorf("hash password for %s: %w", username, err)
	}
	account.HashedPassword = hashed

	stored, created, err := imp.accounts.GetOrCreate(ctx, account)
	if err != nil {
		return nil, false, err
	}
	if !created {
		stored.FirstName = first
		stored.LastName = last
		stored.Email = email
		if err := imp.accounts.Update(ctx, stored); err != nil {
			return nil, false, err
		}
	}

	return stored, created, nil
}

// buildRegistration maps a record onto a Registration. Conversion failures
// on any column surface as a row-level error.
func (imp *Importer) buildRegistration(
	season *domain.Season,
	account *domain.Account,
	tbl *table,
	record []string,
	regID, playerName, dob, mobile, email string,
	pointsMap map[string]int,
) (*domain.Registration, error) {
	rawPaid, err := tbl.get(record, colIsPaid)
	if err != nil {
		return nil, err
	}
	isPaid, err := parseFlag(rawPaid, colIsPaid)
	if err != nil {
		return nil, err
	}

	rawSelected, err := tbl.get(record, colIsSelected)
	if err != nil {
		return nil, err
	}
	isSelected, err := parseFlag(rawSelected, colIsSelected)
	if err != nil {
		return nil, err
	}

	pinCode, err := strconv.Atoi(strings.TrimSpace(tbl.optional(record, colPinCode)))
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", colPinCode, err)
	}

	reg := &domain.Registration{
		ID:              uuid.New(),
		SeasonID:        season.ID,
		RegID:           regID,
		AccountID:       account.ID,
		PlayerName:      playerName,
		FatherName:      tbl.optional(record, colFatherName),
		Category:        domain.Category21AndAbove,
		Age:             domain.CalculateAge(dob, imp.now()),
		DOB:             dob,
		Gender:          tbl.optional(record, colGender),
		TShirtSize:      tbl.optional(record, colTShirt),
		Occupation:      tbl.optional(record, colOccupation),
		Mobile:          mobile,
		Whatsapp:        tbl.optional(record, colWhatsapp),
		Email:           email,
		AdharCard:       tbl.optional(record, colAdhar),
		PlayerImage:     tbl.optional(record, colImage),
		District:        tbl.optional(record, colDistrict),
		PinCode:         pinCode,
		Address:         tbl.optional(record, colAddress),
		FirstPreference: tbl.optional(record, colFirstPref),
		BattingArm:      tbl.optional(record, colBattingArm),
		Role:            tbl.optional(record, colRole),
		TxID:            tbl.optional(record, colTxID),
		IsSelected:      isSelected,
		IsCompleted:     isPaid,
		Points:          resolvePoints(regID, tbl.optional(record, colPoints), pointsMap),
		CreatedAt:       imp.now().UTC(),
	}

	reg.ApplyZone()
	if reg.Zone == domain.ZoneUnknown {
		// Keep the imported zone for districts outside the mapping.
		if z := strings.TrimSpace(tbl.optional(record, colZone)); z != "" {
			reg.Zone = z
		}
	}

	return reg, nil
}

// resolvePoints prefers the points-CSV override, then the row's own points
// column, then zero.
func resolvePoints(regID, rowPoints string, pointsMap map[string]int) int {
	if v, ok := pointsMap[regID]; ok {
		return v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(rowPoints)); err == nil {
		return v
	}
	return 0
}
