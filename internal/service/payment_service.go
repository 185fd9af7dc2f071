package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/mail"
	"github.com/tsplhq/registration-api/internal/payment"
	"github.com/tsplhq/registration-api/internal/store"
)

// EmailSubmitter enqueues transactional emails without blocking. JobService
// satisfies it.
type EmailSubmitter interface {
	SubmitSingleEmail(msg mail.Message) error
}

// PaymentService raises gateway orders and settles payment callbacks.
type PaymentService interface {
	// CreateOrder raises a gateway order for the registration's season fee
	// and records a pending payment.
	CreateOrder(ctx context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error)

	// HandleCallback verifies the gateway callback signature and settles
	// the registration's latest payment. On a valid signature the payment
	// and registration are marked completed atomically and a confirmation
	// email is enqueued; on an invalid one the payment is marked failed
	// and ErrInvalidSignature is returned.
	HandleCallback(ctx context.Context, accountID, registrationID uuid.UUID, orderID, paymentID, signature string) error
}

// PaymentServiceImpl implements the PaymentService interface.
type PaymentServiceImpl struct {
	db            *sql.DB
	gateway       payment.Gateway
	payments      store.PaymentStore
	registrations store.RegistrationStore
	seasons       store.SeasonStore
	settings      store.SettingsStore
	emails        EmailSubmitter
	logger        *slog.Logger
}

var _ PaymentService = (*PaymentServiceImpl)(nil)

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	db *sql.DB,
	gateway payment.Gateway,
	payments store.PaymentStore,
	registrations store.RegistrationStore,
	seasons store.SeasonStore,
	settings store.SettingsStore,
	emails EmailSubmitter,
	logger *slog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		db:            db,
		gateway:       gateway,
		payments:      payments,
		registrations: registrations,
		seasons:       seasons,
		settings:      settings,
		emails:        emails,
		logger:        logger.With("component", "payment_service"),
	}
}

// CreateOrder raises a gateway order for the registration's season fee.
func (s *PaymentServiceImpl) CreateOrder(ctx context.Context, accountID, registrationID uuid.UUID) (*domain.Payment, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	season, err := s.seasons.GetByID(ctx, reg.SeasonID)
	if err != nil {
		return nil, err
	}

	pay, err := domain.NewPayment(accountID, registrationID, season.Amount)
	if err != nil {
		return nil, err
	}
	pay.ReceiptID = "rcpt_" + reg.RegID

	order, err := s.gateway.CreateOrder(ctx, pay.Amount, pay.Currency, pay.ReceiptID)
	if err != nil {
		return nil, fmt.Errorf("raise gateway order: %w", err)
	}
	pay.OrderID = order.ID

	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info("payment order raised",
		"order_id", pay.OrderID,
		"reg_id", reg.RegID,
		"amount", pay.Amount)
	return pay, nil
}

// HandleCallback verifies the callback signature and settles the payment.
func (s *PaymentServiceImpl) HandleCallback(ctx context.Context, accountID, registrationID uuid.UUID, orderID, paymentID, signature string) error {
	pay, err := s.payments.GetLatestForRegistration(ctx, accountID, registrationID)
	if err != nil {
		return err
	}
	if pay.OrderID != orderID {
		return fmt.Errorf("%w: order mismatch", ErrInvalidSignature)
	}

	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		pay.Status = domain.PaymentStatusFailed
		if updateErr := s.payments.Update(ctx, pay); updateErr != nil {
			s.logger.Error("failed to mark payment failed",
				"error", updateErr,
				"order_id", orderID)
		}
		s.logger.Warn("payment signature rejected", "order_id", orderID)
		return ErrInvalidSignature
	}

	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		pay.Status = domain.PaymentStatusPaid
		pay.PaymentID = paymentID
		pay.Signature = signature
		pay.IsCompleted = true
		if err := s.payments.WithTx(tx).Update(ctx, pay); err != nil {
			return err
		}

		reg.TxID = paymentID
		reg.IsCompleted = true
		return s.registrations.WithTx(tx).Update(ctx, reg)
	})
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}

	s.logger.Info("payment settled",
		"order_id", orderID,
		"payment_id", paymentID,
		"reg_id", reg.RegID)

	s.enqueueConfirmation(ctx, reg, pay)
	return nil
}

// enqueueConfirmation submits the success email. Failure to enqueue is
// logged and swallowed: the payment is already settled.
func (s *PaymentServiceImpl) enqueueConfirmation(ctx context.Context, reg *domain.Registration, pay *domain.Payment) {
	msgCtx := map[string]any{
		"reg_id":      reg.RegID,
		"tx_id":       reg.TxID,
		"id":          reg.TxID,
		"player_name": reg.PlayerName,
		"zone":        reg.Zone,
		"amount":      pay.DisplayAmount(),
	}
	if settings, err := s.settings.Get(ctx); err == nil {
		msgCtx["settings"] = settings.TemplateContext()
	}

	err := s.emails.SubmitSingleEmail(mail.Message{
		To:       reg.Email,
		Subject:  "TSPL Registration Confirmed",
		Template: mail.DefaultSuccessTemplate,
		Context:  msgCtx,
		TextFallback: fmt.Sprintf("Your registration %s is confirmed. Amount paid: %.2f",
			reg.RegID, pay.DisplayAmount()),
	})
	if err != nil {
		s.logger.Error("failed to enqueue confirmation email",
			"error", err,
			"reg_id", reg.RegID)
	}
}
