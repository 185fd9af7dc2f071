package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

func validInput() RegistrationInput {
	return RegistrationInput{
		PlayerName: "Arjun Kumar",
		FatherName: "Kumar Sr",
		DOB:        "2000-06-15",
		Gender:     "Male",
		TShirtSize: "L",
		Mobile:     "9876543210",
		Whatsapp:   "9876543210",
		Email:      "arjun@x.com",
		District:   "Chennai",
		PinCode:    600001,
		Role:       "Batsman",
	}
}

func newRegistrationFixture(t *testing.T, acceptResponse bool) (*RegistrationServiceImpl, *mockRegistrationStore, uuid.UUID) {
	t.Helper()

	seasons := newMockSeasonStore()
	regs := newMockRegistrationStore()

	season, err := domain.NewSeason("TSPL Season 4", "2026",
		time.Now(), time.Now().AddDate(0, 3, 0), 50000)
	require.NoError(t, err)
	season.AcceptResponse = acceptResponse
	require.NoError(t, seasons.Create(context.Background(), season))

	svc := NewRegistrationService(nil, seasons, newMockAccountStore(), regs,
		&mockSettingsStore{}, testLogger())
	return svc, regs, season.ID
}

func TestRegistrationService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates registration with derived fields", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, true)

		reg, err := svc.Register(context.Background(), seasonID, uuid.New(), validInput())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(reg.RegID, "TSPL"))
		assert.Equal(t, domain.Category21AndAbove, reg.Category)
		assert.Equal(t, "ZONE C", reg.Zone)
		assert.Equal(t, domain.DefaultPlayerPoints, reg.Points)
		assert.False(t, reg.IsCompleted)
	})

	t.Run("closed season rejects registration", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, false)

		_, err := svc.Register(context.Background(), seasonID, uuid.New(), validInput())
		assert.ErrorIs(t, err, ErrRegistrationClosed)
	})

	t.Run("settings switch closes registration", func(t *testing.T) {
		t.Parallel()

		seasons := newMockSeasonStore()
		regs := newMockRegistrationStore()

		season, err := domain.NewSeason("TSPL Season 4", "2026",
			time.Now(), time.Now().AddDate(0, 3, 0), 50000)
		require.NoError(t, err)
		season.AcceptResponse = true
		require.NoError(t, seasons.Create(context.Background(), season))

		settings := &mockSettingsStore{settings: &domain.Settings{ID: uuid.New()}}
		svc := NewRegistrationService(nil, seasons, newMockAccountStore(), regs,
			settings, testLogger())

		_, err = svc.Register(context.Background(), season.ID, uuid.New(), validInput())
		assert.ErrorIs(t, err, ErrRegistrationClosed)

		settings.settings.EnableRegistration = true
		_, err = svc.Register(context.Background(), season.ID, uuid.New(), validInput())
		assert.NoError(t, err)
	})

	t.Run("second registration for same account is rejected", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, true)
		accountID := uuid.New()

		_, err := svc.Register(context.Background(), seasonID, accountID, validInput())
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), seasonID, accountID, validInput())
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("unknown season surfaces not found", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newRegistrationFixture(t, true)

		_, err := svc.Register(context.Background(), uuid.New(), uuid.New(), validInput())
		assert.ErrorIs(t, err, store.ErrSeasonNotFound)
	})

	t.Run("invalid input surfaces invalid entity", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, true)
		input := validInput()
		input.Mobile = "123"

		_, err := svc.Register(context.Background(), seasonID, uuid.New(), input)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestRegistrationService_Update(t *testing.T) {
	t.Parallel()

	t.Run("overwrites player fields and rederives zone", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, true)
		accountID := uuid.New()

		created, err := svc.Register(context.Background(), seasonID, accountID, validInput())
		require.NoError(t, err)

		input := validInput()
		input.PlayerName = "Arjun K"
		input.District = "Madurai"

		updated, err := svc.Update(context.Background(), seasonID, accountID, input)
		require.NoError(t, err)

		assert.Equal(t, created.RegID, updated.RegID)
		assert.Equal(t, "Arjun K", updated.PlayerName)
		assert.Equal(t, domain.ZoneForDistrict("Madurai"), updated.Zone)
	})

	t.Run("locked form rejects edits", func(t *testing.T) {
		t.Parallel()

		seasons := newMockSeasonStore()
		regs := newMockRegistrationStore()

		season, err := domain.NewSeason("TSPL Season 4", "2026",
			time.Now(), time.Now().AddDate(0, 3, 0), 50000)
		require.NoError(t, err)
		season.FormEditable = false
		require.NoError(t, seasons.Create(context.Background(), season))

		svc := NewRegistrationService(nil, seasons, newMockAccountStore(), regs,
			&mockSettingsStore{}, testLogger())

		_, err = svc.Update(context.Background(), season.ID, uuid.New(), validInput())
		assert.ErrorIs(t, err, ErrFormNotEditable)
	})

	t.Run("missing registration surfaces not found", func(t *testing.T) {
		t.Parallel()

		svc, _, seasonID := newRegistrationFixture(t, true)

		_, err := svc.Update(context.Background(), seasonID, uuid.New(), validInput())
		assert.ErrorIs(t, err, store.ErrRegistrationNotFound)
	})
}

func TestRegistrationService_ExportCSV(t *testing.T) {
	t.Parallel()

	seasons := newMockSeasonStore()
	regs := newMockRegistrationStore()
	accounts := newMockAccountStore()

	season, err := domain.NewSeason("TSPL Season 4", "2026",
		time.Now(), time.Now().AddDate(0, 3, 0), 50000)
	require.NoError(t, err)
	require.NoError(t, seasons.Create(context.Background(), season))

	account, err := domain.NewAccount("arjun01", "Arjun", "Kumar", "arjun@x.com")
	require.NoError(t, err)
	_, _, err = accounts.GetOrCreate(context.Background(), account)
	require.NoError(t, err)

	reg := domain.NewRegistration(season.ID, account.ID)
	reg.RegID = "TSPL08260001"
	reg.PlayerName = "Arjun Kumar"
	reg.Mobile = "9876543210"
	reg.Email = "arjun@x.com"
	reg.District = "Chennai"
	reg.Points = 42
	reg.IsCompleted = true
	reg.ApplyZone()
	require.NoError(t, regs.Create(context.Background(), reg))

	svc := NewRegistrationService(nil, seasons, accounts, regs,
		&mockSettingsStore{}, testLogger())

	data, err := svc.ExportCSV(context.Background(), season.ID)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(exportHeader, ","), lines[0])
	assert.Contains(t, lines[1], "TSPL08260001")
	assert.Contains(t, lines[1], "arjun01")
	assert.Contains(t, lines[1], ",1,") // is_paid flag
	assert.Contains(t, lines[1], "42")
}
