package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/ingest"
	"github.com/tsplhq/registration-api/internal/mail"
	"github.com/tsplhq/registration-api/internal/payment"
	"github.com/tsplhq/registration-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSeasonStore is an in-memory store.SeasonStore.
type mockSeasonStore struct {
	seasons map[uuid.UUID]*domain.Season
}

func newMockSeasonStore() *mockSeasonStore {
	return &mockSeasonStore{seasons: make(map[uuid.UUID]*domain.Season)}
}

func (m *mockSeasonStore) Create(_ context.Context, season *domain.Season) error {
	m.seasons[season.ID] = season
	return nil
}

func (m *mockSeasonStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Season, error) {
	s, ok := m.seasons[id]
	if !ok {
		return nil, store.ErrSeasonNotFound
	}
	return s, nil
}

func (m *mockSeasonStore) List(_ context.Context) ([]*domain.Season, error) {
	var out []*domain.Season
	for _, s := range m.seasons {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSeasonStore) WithTx(*sql.Tx) store.SeasonStore { return m }

// mockAccountStore is an in-memory store.AccountStore.
type mockAccountStore struct {
	byID       map[uuid.UUID]*domain.Account
	byUsername map[string]*domain.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		byID:       make(map[uuid.UUID]*domain.Account),
		byUsername: make(map[string]*domain.Account),
	}
}

func (m *mockAccountStore) GetOrCreate(_ context.Context, account *domain.Account) (*domain.Account, bool, error) {
	if existing, ok := m.byUsername[account.Username]; ok {
		return existing, false, nil
	}
	m.byID[account.ID] = account
	m.byUsername[account.Username] = account
	return account, true, nil
}

func (m *mockAccountStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	a, ok := m.byUsername[username]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return a, nil
}

func (m *mockAccountStore) Update(_ context.Context, account *domain.Account) error {
	if _, ok := m.byID[account.ID]; !ok {
		return store.ErrAccountNotFound
	}
	m.byID[account.ID] = account
	m.byUsername[account.Username] = account
	return nil
}

func (m *mockAccountStore) WithTx(*sql.Tx) store.AccountStore { return m }

// mockRegistrationStore is an in-memory store.RegistrationStore.
type mockRegistrationStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*domain.Registration
	mailSent []uuid.UUID
}

func newMockRegistrationStore() *mockRegistrationStore {
	return &mockRegistrationStore{byID: make(map[uuid.UUID]*domain.Registration)}
}

func (m *mockRegistrationStore) Create(_ context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reg.RegID == "" {
		seq := 0
		for _, r := range m.byID {
			if r.SeasonID == reg.SeasonID {
				seq++
			}
		}
		reg.RegID = fmt.Sprintf("TSPL%s%04d", reg.CreatedAt.Format("0106"), seq+1)
	}
	m.byID[reg.ID] = reg
	return nil
}

func (m *mockRegistrationStore) Upsert(_ context.Context, reg *domain.Registration) (*domain.Registration, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.SeasonID == reg.SeasonID && r.RegID == reg.RegID {
			reg.ID = r.ID
			m.byID[r.ID] = reg
			return reg, false, nil
		}
	}
	m.byID[reg.ID] = reg
	return reg, true, nil
}

func (m *mockRegistrationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, store.ErrRegistrationNotFound
	}
	return r, nil
}

func (m *mockRegistrationStore) GetBySeasonAndAccount(_ context.Context, seasonID, accountID uuid.UUID) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.SeasonID == seasonID && r.AccountID == accountID {
			return r, nil
		}
	}
	return nil, store.ErrRegistrationNotFound
}

func (m *mockRegistrationStore) ListBySeason(_ context.Context, query store.RegistrationQuery) ([]*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Registration
	for _, r := range m.byID {
		if r.SeasonID != query.SeasonID {
			continue
		}
		if query.MailFilter == store.MailFilterSent && !r.IsMailSent {
			continue
		}
		if query.MailFilter == store.MailFilterUnsent && r.IsMailSent {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRegistrationStore) CountBySeason(_ context.Context, seasonID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.byID {
		if r.SeasonID == seasonID {
			count++
		}
	}
	return count, nil
}

func (m *mockRegistrationStore) Update(_ context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[reg.ID]; !ok {
		return store.ErrRegistrationNotFound
	}
	m.byID[reg.ID] = reg
	return nil
}

func (m *mockRegistrationStore) MarkMailSent(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return store.ErrRegistrationNotFound
	}
	r.IsMailSent = true
	m.mailSent = append(m.mailSent, id)
	return nil
}

func (m *mockRegistrationStore) WithTx(*sql.Tx) store.RegistrationStore { return m }

// mockPaymentStore is an in-memory store.PaymentStore.
type mockPaymentStore struct {
	byID map[uuid.UUID]*domain.Payment
}

func newMockPaymentStore() *mockPaymentStore {
	return &mockPaymentStore{byID: make(map[uuid.UUID]*domain.Payment)}
}

func (m *mockPaymentStore) Create(_ context.Context, payment *domain.Payment) error {
	m.byID[payment.ID] = payment
	return nil
}

func (m *mockPaymentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	return p, nil
}

func (m *mockPaymentStore) GetLatestForRegistration(_ context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error) {
	var latest *domain.Payment
	for _, p := range m.byID {
		if p.AccountID != accountID || p.RegistrationID != registrationID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, store.ErrPaymentNotFound
	}
	return latest, nil
}

func (m *mockPaymentStore) Update(_ context.Context, payment *domain.Payment) error {
	if _, ok := m.byID[payment.ID]; !ok {
		return store.ErrPaymentNotFound
	}
	m.byID[payment.ID] = payment
	return nil
}

func (m *mockPaymentStore) WithTx(*sql.Tx) store.PaymentStore { return m }

// mockSettingsStore is an in-memory store.SettingsStore.
type mockSettingsStore struct {
	settings *domain.Settings
}

func (m *mockSettingsStore) Get(context.Context) (*domain.Settings, error) {
	if m.settings == nil {
		return nil, store.ErrSettingsNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsStore) Save(_ context.Context, settings *domain.Settings) error {
	m.settings = settings
	return nil
}

func (m *mockSettingsStore) WithTx(*sql.Tx) store.SettingsStore { return m }

// mockGateway is a scriptable payment.Gateway.
type mockGateway struct {
	order      *payment.Order
	orderErr   error
	validSig   string
	orderCalls int
}

func (m *mockGateway) CreateOrder(_ context.Context, amount int, currency, receipt string) (*payment.Order, error) {
	m.orderCalls++
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	if m.order != nil {
		return m.order, nil
	}
	return &payment.Order{ID: "order_test", Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (m *mockGateway) VerifySignature(_, _, signature string) bool {
	return signature == m.validSig
}

// mockSubmitter records submitted jobs.
type mockSubmitter struct {
	singles []mail.Message
	batches []mail.BatchJob
	ingests []ingest.Job
	err     error
}

func (m *mockSubmitter) SubmitSingleEmail(msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.singles = append(m.singles, msg)
	return nil
}

func (m *mockSubmitter) SubmitBatchEmail(job mail.BatchJob) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, job)
	return nil
}

func (m *mockSubmitter) SubmitIngestion(job ingest.Job) error {
	if m.err != nil {
		return m.err
	}
	m.ingests = append(m.ingests, job)
	return nil
}
