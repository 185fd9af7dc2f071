package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/service"
	"github.com/tsplhq/registration-api/internal/store"
)

type fakeRegistrationService struct {
	reg *domain.Registration
	err error
}

var _ service.RegistrationService = (*fakeRegistrationService)(nil)

func (f *fakeRegistrationService) Register(_ context.Context, seasonID, accountID uuid.UUID, input service.RegistrationInput) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	reg := domain.NewRegistration(seasonID, accountID)
	reg.RegID = "TSPL08260001"
	reg.PlayerName = input.PlayerName
	f.reg = reg
	return reg, nil
}

func (f *fakeRegistrationService) Update(_ context.Context, _, _ uuid.UUID, input service.RegistrationInput) (*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.reg == nil {
		return nil, store.ErrRegistrationNotFound
	}
	f.reg.PlayerName = input.PlayerName
	return f.reg, nil
}

func (f *fakeRegistrationService) Get(_ context.Context, _ uuid.UUID) (*domain.Registration, error) {
	if f.reg == nil {
		return nil, store.ErrRegistrationNotFound
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) GetForAccount(_ context.Context, _, _ uuid.UUID) (*domain.Registration, error) {
	if f.reg == nil {
		return nil, store.ErrRegistrationNotFound
	}
	return f.reg, nil
}

func (f *fakeRegistrationService) List(_ context.Context, _ store.RegistrationQuery) ([]*domain.Registration, error) {
	if f.reg == nil {
		return nil, nil
	}
	return []*domain.Registration{f.reg}, nil
}

func (f *fakeRegistrationService) ExportCSV(_ context.Context, _ uuid.UUID) ([]byte, error) {
	return []byte("reg_id\nTSPL08260001\n"), nil
}

func registrationBody() CreateRegistrationRequest {
	return CreateRegistrationRequest{
		PlayerName: "Arjun Kumar",
		DOB:        "2000-06-15",
		Gender:     "Male",
		Mobile:     "9876543210",
		Email:      "arjun@x.com",
		District:   "Chennai",
		PinCode:    600001,
	}
}

func TestRegistrationHandler_Create(t *testing.T) {
	t.Parallel()

	seasonID := uuid.New()
	accountID := uuid.New()

	t.Run("creates registration", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{})

		req := newJSONRequest(t, http.MethodPost, "/registrations", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeBody[domain.Registration](t, rec)
		assert.Equal(t, "TSPL08260001", resp.RegID)
		assert.Equal(t, "Arjun Kumar", resp.PlayerName)
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{})

		req := newJSONRequest(t, http.MethodPost, "/registrations", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())

		rec := httptest.NewRecorder()
		handler.Create(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("closed season is forbidden", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{err: service.ErrRegistrationClosed})

		req := newJSONRequest(t, http.MethodPost, "/registrations", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Create(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{err: service.ErrAlreadyRegistered})

		req := newJSONRequest(t, http.MethodPost, "/registrations", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Create(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short mobile is rejected before the service", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{})
		body := registrationBody()
		body.Mobile = "123"

		req := newJSONRequest(t, http.MethodPost, "/registrations", body)
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Create(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegistrationHandler_Update(t *testing.T) {
	t.Parallel()

	seasonID := uuid.New()
	accountID := uuid.New()

	t.Run("overwrites existing registration", func(t *testing.T) {
		t.Parallel()

		existing := domain.NewRegistration(seasonID, accountID)
		existing.RegID = "TSPL08260001"
		existing.PlayerName = "Old Name"
		handler := NewRegistrationHandler(&fakeRegistrationService{reg: existing})

		req := newJSONRequest(t, http.MethodPut, "/registrations/me", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Update(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[domain.Registration](t, rec)
		assert.Equal(t, "TSPL08260001", resp.RegID)
		assert.Equal(t, "Arjun Kumar", resp.PlayerName)
	})

	t.Run("locked form is forbidden", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{err: service.ErrFormNotEditable})

		req := newJSONRequest(t, http.MethodPut, "/registrations/me", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Update(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing registration is not found", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{})

		req := newJSONRequest(t, http.MethodPut, "/registrations/me", registrationBody())
		req = withURLParam(req, "seasonID", seasonID.String())
		req = withAccountID(req, accountID)

		rec := httptest.NewRecorder()
		handler.Update(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRegistrationHandler_Export(t *testing.T) {
	t.Parallel()

	handler := NewRegistrationHandler(&fakeRegistrationService{})

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	req = withURLParam(req, "seasonID", uuid.New().String())

	rec := httptest.NewRecorder()
	handler.Export(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "TSPL08260001")
}

func TestRegistrationHandler_GetMine(t *testing.T) {
	t.Parallel()

	t.Run("missing registration is not found", func(t *testing.T) {
		t.Parallel()

		handler := NewRegistrationHandler(&fakeRegistrationService{})

		req := httptest.NewRequest(http.MethodGet, "/registrations/me", nil)
		req = withURLParam(req, "seasonID", uuid.New().String())
		req = withAccountID(req, uuid.New())

		rec := httptest.NewRecorder()
		handler.GetMine(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
