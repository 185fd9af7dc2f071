package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/mail"
	"github.com/tsplhq/registration-api/internal/store"
)

// MailingKind selects the pacing profile of a bulk mailing.
type MailingKind string

// Mailing kinds. Result announcements are paced slower to stay further under
// provider rate limits.
const (
	MailingKindGeneral MailingKind = "general"
	MailingKindResults MailingKind = "results"
)

// MailingInput describes one bulk mailing request.
type MailingInput struct {
	SeasonID uuid.UUID
	Subject  string
	Template string
	Text     string

	// Search and MailFilter narrow the recipient set the same way the
	// admin listing does.
	Search     string
	MailFilter store.MailFilter

	// SelectedIDs, when non-empty, restricts the mailing to the named
	// registrations out of the filtered set.
	SelectedIDs []uuid.UUID

	Kind MailingKind
}

// BatchSubmitter enqueues bulk email jobs without blocking. JobService
// satisfies it.
type BatchSubmitter interface {
	SubmitBatchEmail(job mail.BatchJob) error
}

// MailingService builds and submits bulk mailings.
type MailingService interface {
	// SendBulk resolves the recipient set and enqueues one batch job.
	// Returns the number of recipients enqueued, or ErrNoRecipients when
	// the filters match nothing. The caller gets an optimistic
	// acknowledgement; delivery outcomes surface only in logs.
	SendBulk(ctx context.Context, input MailingInput) (int, error)
}

// MailingServiceImpl implements the MailingService interface.
type MailingServiceImpl struct {
	registrations store.RegistrationStore
	seasons       store.SeasonStore
	settings      store.SettingsStore
	jobs          BatchSubmitter
	logger        *slog.Logger
}

var _ MailingService = (*MailingServiceImpl)(nil)

// NewMailingService creates a new MailingService.
func NewMailingService(
	registrations store.RegistrationStore,
	seasons store.SeasonStore,
	settings store.SettingsStore,
	jobs BatchSubmitter,
	logger *slog.Logger,
) *MailingServiceImpl {
	return &MailingServiceImpl{
		registrations: registrations,
		seasons:       seasons,
		settings:      settings,
		jobs:          jobs,
		logger:        logger.With("component", "mailing_service"),
	}
}

// SendBulk resolves the recipient set and enqueues one batch job.
func (s *MailingServiceImpl) SendBulk(ctx context.Context, input MailingInput) (int, error) {
	season, err := s.seasons.GetByID(ctx, input.SeasonID)
	if err != nil {
		return 0, err
	}

	regs, err := s.registrations.ListBySeason(ctx, store.RegistrationQuery{
		SeasonID:   input.SeasonID,
		Search:     input.Search,
		MailFilter: input.MailFilter,
	})
	if err != nil {
		return 0, err
	}
	if len(input.SelectedIDs) > 0 {
		selected := make(map[uuid.UUID]bool, len(input.SelectedIDs))
		for _, id := range input.SelectedIDs {
			selected[id] = true
		}
		kept := regs[:0]
		for _, reg := range regs {
			if selected[reg.ID] {
				kept = append(kept, reg)
			}
		}
		regs = kept
	}
	if len(regs) == 0 {
		return 0, ErrNoRecipients
	}

	job := mail.BatchJob{
		Subject:    input.Subject,
		Template:   input.Template,
		Text:       input.Text,
		Recipients: make([]mail.Recipient, 0, len(regs)),
		Pacing:     mail.DefaultPacing,
	}
	if input.Kind == MailingKindResults {
		job.Pacing = mail.ResultsPacing
	}

	if settings, err := s.settings.Get(ctx); err == nil {
		job.Settings = settings.TemplateContext()
	} else if !errors.Is(err, store.ErrSettingsNotFound) {
		return 0, err
	}

	ids := make(map[string]uuid.UUID, len(regs))
	for _, reg := range regs {
		if reg.Email == "" {
			continue
		}
		ids[reg.Email+"/"+reg.RegID] = reg.ID
		job.Recipients = append(job.Recipients, mail.Recipient{
			To:      reg.Email,
			Context: recipientContext(reg, season.DisplayAmount()),
		})
	}
	if len(job.Recipients) == 0 {
		return 0, ErrNoRecipients
	}

	// Delivery marks the registration's mail-sent flag; the worker slot's
	// own context cannot be used here because it outlives the request.
	job.OnDelivered = func(r mail.Recipient) {
		regID, _ := r.Context["reg_id"].(string)
		id, ok := ids[r.To+"/"+regID]
		if !ok {
			return
		}
		if err := s.registrations.MarkMailSent(context.Background(), id); err != nil {
			s.logger.Error("failed to mark mail sent",
				"error", err,
				"reg_id", regID)
		}
	}

	if err := s.jobs.SubmitBatchEmail(job); err != nil {
		return 0, err
	}

	s.logger.Info("bulk mailing enqueued",
		"season_id", input.SeasonID,
		"subject", input.Subject,
		"recipients", len(job.Recipients),
		"kind", input.Kind)
	return len(job.Recipients), nil
}

// recipientContext exposes the registration fields templates may reference.
// "id" carries the transaction reference, matching the confirmation email's
// bindings; "amount" is the season fee in rupees.
func recipientContext(reg *domain.Registration, amount float64) map[string]any {
	return map[string]any{
		"reg_id":      reg.RegID,
		"tx_id":       reg.TxID,
		"id":          reg.TxID,
		"amount":      amount,
		"player_name": reg.PlayerName,
		"zone":        reg.Zone,
		"district":    reg.District,
		"points":      reg.Points,
		"is_selected": reg.IsSelected,
		"role":        reg.Role,
	}
}
