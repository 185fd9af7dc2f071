package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// maxRegIDAttempts bounds the unique-violation retry loop for auto-assigned
// reg-IDs. Only concurrent live registrations ever collide; bulk ingestion is
// serialized on a single worker and never retries.
const maxRegIDAttempts = 5

// PostgresRegistrationStore implements the store.RegistrationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRegistrationStore struct {
	db store.DBTX
}

// Ensure PostgresRegistrationStore implements store.RegistrationStore
var _ store.RegistrationStore = (*PostgresRegistrationStore)(nil)

// NewPostgresRegistrationStore creates a new PostgreSQL implementation of
// the RegistrationStore interface.
func NewPostgresRegistrationStore(db store.DBTX) *PostgresRegistrationStore {
	return &PostgresRegistrationStore{db: db}
}

// WithTx returns a RegistrationStore bound to the provided transaction.
func (s *PostgresRegistrationStore) WithTx(tx *sql.Tx) store.RegistrationStore {
	return &PostgresRegistrationStore{db: tx}
}

const registrationColumns = `id, season_id, reg_id, account_id, player_name, father_name, category, age,
	dob, gender, tshirt_size, occupation, mobile, whatsapp, email, adhar_card, player_image,
	district, zone, pin_code, address, first_preference, batting_arm, role, tx_id,
	is_selected, points, is_mail_sent, is_completed, created_at`

// Create implements store.RegistrationStore.Create. An empty RegID is
// assigned from the season's sequence inside the same atomic unit as the
// insert; a unique violation on the natural key recomputes the sequence and
// retries.
func (s *PostgresRegistrationStore) Create(ctx context.Context, reg *domain.Registration) error {
	autoAssign := reg.RegID == ""

	// When the store is already bound to a transaction the caller owns the
	// atomic unit and a collision is theirs to handle.
	sqlDB, standalone := s.db.(*sql.DB)
	if !standalone {
		return s.createOnce(ctx, s.db, reg)
	}

	var lastErr error
	for attempt := 0; attempt < maxRegIDAttempts; attempt++ {
		lastErr = store.RunInTransaction(ctx, sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return s.createOnce(ctx, tx, reg)
		})
		if lastErr == nil {
			return nil
		}
		if !autoAssign || !errors.Is(lastErr, store.ErrRegIDExists) {
			return lastErr
		}
		// Another creation won the sequence number; recompute.
		reg.RegID = ""
	}
	return lastErr
}

// createOnce assigns the reg-ID if needed and inserts, against the given
// queryable (connection or transaction).
func (s *PostgresRegistrationStore) createOnce(ctx context.Context, q store.DBTX, reg *domain.Registration) error {
	if reg.RegID == "" {
		var count int
		err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM registrations WHERE season_id = $1`,
			reg.SeasonID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count season registrations: %w", MapError(err))
		}
		reg.RegID = formatRegID(reg, count+1)
	}

	insert := `INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)`

	_, err := q.ExecContext(ctx, insert, registrationArgs(reg)...)
	if err != nil {
		return fmt.Errorf("create registration: %w", MapUniqueViolation(MapError(err), store.ErrRegIDExists))
	}
	return nil
}

// formatRegID renders the per-season identifier: TSPL, the two-digit month
// and year of creation, then the zero-padded sequence number.
func formatRegID(reg *domain.Registration, sequence int) string {
	return fmt.Sprintf("TSPL%s%04d", reg.CreatedAt.Format("0106"), sequence)
}

// Upsert implements store.RegistrationStore.Upsert: an existing (season,
// reg_id) row gets its descriptive fields overwritten while keeping its
// internal ID, mail-sent flag and creation time; an absent one is inserted.
func (s *PostgresRegistrationStore) Upsert(ctx context.Context, reg *domain.Registration) (*domain.Registration, bool, error) {
	if reg.RegID == "" {
		if err := s.Create(ctx, reg); err != nil {
			return nil, false, err
		}
		return reg, true, nil
	}

	var existingID uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM registrations WHERE season_id = $1 AND reg_id = $2`,
		reg.SeasonID, reg.RegID,
	).Scan(&existingID)

	switch {
	case err == nil:
		reg.ID = existingID
		if err := s.updateRow(ctx, reg); err != nil {
			return nil, false, err
		}
		return reg, false, nil

	case errors.Is(err, sql.ErrNoRows):
		if err := s.createOnce(ctx, s.db, reg); err != nil {
			return nil, false, err
		}
		return reg, true, nil

	default:
		return nil, false, fmt.Errorf("lookup registration %s: %w", reg.RegID, MapError(err))
	}
}

// GetByID implements store.RegistrationStore.GetByID
func (s *PostgresRegistrationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistrationRow(s.db.QueryRowContext(ctx, query, id))
}

// GetBySeasonAndAccount implements store.RegistrationStore.GetBySeasonAndAccount
func (s *PostgresRegistrationStore) GetBySeasonAndAccount(ctx context.Context, seasonID, accountID uuid.UUID) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE season_id = $1 AND account_id = $2
		ORDER BY created_at DESC LIMIT 1`
	return scanRegistrationRow(s.db.QueryRowContext(ctx, query, seasonID, accountID))
}

// ListBySeason implements store.RegistrationStore.ListBySeason
func (s *PostgresRegistrationStore) ListBySeason(ctx context.Context, query store.RegistrationQuery) ([]*domain.Registration, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + registrationColumns + ` FROM registrations WHERE season_id = $1`)
	args := []any{query.SeasonID}

	if query.Search != "" {
		args = append(args, "%"+query.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (reg_id ILIKE $%d OR player_name ILIKE $%d OR email ILIKE $%d)`, n, n, n)
	}

	switch query.MailFilter {
	case store.MailFilterSent:
		sb.WriteString(` AND is_mail_sent = TRUE`)
	case store.MailFilterUnsent:
		sb.WriteString(` AND is_mail_sent = FALSE`)
	}

	sb.WriteString(` ORDER BY created_at DESC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var regs []*domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", MapError(err))
	}

	return regs, nil
}

// CountBySeason implements store.RegistrationStore.CountBySeason
func (s *PostgresRegistrationStore) CountBySeason(ctx context.Context, seasonID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE season_id = $1`,
		seasonID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", MapError(err))
	}
	return count, nil
}

// Update implements store.RegistrationStore.Update
func (s *PostgresRegistrationStore) Update(ctx context.Context, reg *domain.Registration) error {
	return s.updateRow(ctx, reg)
}

// MarkMailSent implements store.RegistrationStore.MarkMailSent
func (s *PostgresRegistrationStore) MarkMailSent(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE registrations SET is_mail_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark mail sent: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrRegistrationNotFound)
}

// updateRow overwrites the descriptive fields. The internal ID, season,
// reg_id, mail-sent flag and creation time are left untouched.
func (s *PostgresRegistrationStore) updateRow(ctx context.Context, reg *domain.Registration) error {
	query := `UPDATE registrations SET
		account_id = $1, player_name = $2, father_name = $3, category = $4, age = $5,
		dob = $6, gender = $7, tshirt_size = $8, occupation = $9, mobile = $10,
		whatsapp = $11, email = $12, adhar_card = $13, player_image = $14,
		district = $15, zone = $16, pin_code = $17, address = $18,
		first_preference = $19, batting_arm = $20, role = $21, tx_id = $22,
		is_selected = $23, points = $24, is_completed = $25
		WHERE id = $26`

	result, err := s.db.ExecContext(ctx, query,
		reg.AccountID, reg.PlayerName, reg.FatherName, reg.Category, reg.Age,
		reg.DOB, reg.Gender, reg.TShirtSize, reg.Occupation, reg.Mobile,
		reg.Whatsapp, reg.Email, reg.AdharCard, reg.PlayerImage,
		reg.District, reg.Zone, reg.PinCode, reg.Address,
		reg.FirstPreference, reg.BattingArm, reg.Role, reg.TxID,
		reg.IsSelected, reg.Points, reg.IsCompleted,
		reg.ID,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrRegistrationNotFound)
}

func registrationArgs(reg *domain.Registration) []any {
	return []any{
		reg.ID, reg.SeasonID, reg.RegID, reg.AccountID, reg.PlayerName, reg.FatherName,
		reg.Category, reg.Age, reg.DOB, reg.Gender, reg.TShirtSize, reg.Occupation,
		reg.Mobile, reg.Whatsapp, reg.Email, reg.AdharCard, reg.PlayerImage,
		reg.District, reg.Zone, reg.PinCode, reg.Address, reg.FirstPreference,
		reg.BattingArm, reg.Role, reg.TxID, reg.IsSelected, reg.Points,
		reg.IsMailSent, reg.IsCompleted, reg.CreatedAt,
	}
}

// scanner abstracts *sql.Row and *sql.Rows for registration scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanRegistrationRow(row *sql.Row) (*domain.Registration, error) {
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func scanRegistration(sc scanner) (*domain.Registration, error) {
	var reg domain.Registration
	err := sc.Scan(
		&reg.ID, &reg.SeasonID, &reg.RegID, &reg.AccountID, &reg.PlayerName, &reg.FatherName,
		&reg.Category, &reg.Age, &reg.DOB, &reg.Gender, &reg.TShirtSize, &reg.Occupation,
		&reg.Mobile, &reg.Whatsapp, &reg.Email, &reg.AdharCard, &reg.PlayerImage,
		&reg.District, &reg.Zone, &reg.PinCode, &reg.Address, &reg.FirstPreference,
		&reg.BattingArm, &reg.Role, &reg.TxID, &reg.IsSelected, &reg.Points,
		&reg.IsMailSent, &reg.IsCompleted, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", MapError(err))
	}
	return &reg, nil
}
