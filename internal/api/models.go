package api

import (
	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/service"
)

// Common request/response structures

// SignupRequest defines the payload for the account signup endpoint.
type SignupRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=64"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"      validate:"required,email"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// AccountID is the unique identifier of the authenticated account.
	AccountID uuid.UUID `json:"account_id"`

	// AccessToken is the JWT token used for API authorization.
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateSeasonRequest defines the payload for creating a season.
type CreateSeasonRequest struct {
	Title     string `json:"title"      validate:"required"`
	Year      string `json:"year"       validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"   validate:"required"`

	// Amount is the registration fee in paise.
	Amount int `json:"amount" validate:"gte=0"`
}

// CreateRegistrationRequest defines the payload for a live registration.
type CreateRegistrationRequest struct {
	PlayerName      string `json:"player_name"      validate:"required"`
	FatherName      string `json:"father_name"`
	DOB             string `json:"dob"              validate:"required"`
	Gender          string `json:"gender"           validate:"required"`
	TShirtSize      string `json:"tshirt_size"`
	Occupation      string `json:"occupation"`
	Mobile          string `json:"mobile"           validate:"required,len=10"`
	Whatsapp        string `json:"wathsapp_number"`
	Email           string `json:"email"            validate:"required,email"`
	AdharCard       string `json:"adhar_card"`
	PlayerImage     string `json:"player_image"`
	District        string `json:"district"         validate:"required"`
	PinCode         int    `json:"pin_code"         validate:"required"`
	Address         string `json:"address"`
	FirstPreference string `json:"first_preference"`
	BattingArm      string `json:"batting_arm"`
	Role            string `json:"role"`
}

// toInput maps the request payload onto the service input type.
func (req CreateRegistrationRequest) toInput() service.RegistrationInput {
	return service.RegistrationInput{
		PlayerName:      req.PlayerName,
		FatherName:      req.FatherName,
		DOB:             req.DOB,
		Gender:          req.Gender,
		TShirtSize:      req.TShirtSize,
		Occupation:      req.Occupation,
		Mobile:          req.Mobile,
		Whatsapp:        req.Whatsapp,
		Email:           req.Email,
		AdharCard:       req.AdharCard,
		PlayerImage:     req.PlayerImage,
		District:        req.District,
		PinCode:         req.PinCode,
		Address:         req.Address,
		FirstPreference: req.FirstPreference,
		BattingArm:      req.BattingArm,
		Role:            req.Role,
	}
}

// CreateOrderRequest defines the payload for raising a payment order.
type CreateOrderRequest struct {
	RegistrationID uuid.UUID `json:"registration_id" validate:"required"`
}

// OrderResponse defines the response for a raised payment order.
type OrderResponse struct {
	OrderID string `json:"order_id"`
	Amount  int    `json:"amount"`
	// Currency is the ISO code the order was raised in.
	Currency string `json:"currency"`
}

// PaymentCallbackRequest defines the payload the payment gateway posts back
// after checkout.
type PaymentCallbackRequest struct {
	RegistrationID uuid.UUID `json:"registration_id"   validate:"required"`
	OrderID        string    `json:"razorpay_order_id" validate:"required"`
	PaymentID      string    `json:"razorpay_payment_id" validate:"required"`
	Signature      string    `json:"razorpay_signature"  validate:"required"`
}

// MailingRequest defines the payload for triggering a bulk mailing.
type MailingRequest struct {
	Subject  string `json:"subject"  validate:"required"`
	Template string `json:"template" validate:"required"`
	Text     string `json:"text"`

	// Search and MailFilter narrow the recipient set.
	Search     string `json:"search"`
	MailFilter string `json:"mail_filter" validate:"omitempty,oneof=all sent unsent"`

	// SelectedIDs restricts the mailing to hand-picked registrations out
	// of the filtered set.
	SelectedIDs []uuid.UUID `json:"selected_ids"`

	// Kind selects the pacing profile ("general" or "results").
	Kind string `json:"kind" validate:"omitempty,oneof=general results"`
}

// JobAcceptedResponse acknowledges an accepted background job.
type JobAcceptedResponse struct {
	Status string `json:"status"`

	// Recipients is the number of recipients enqueued, for mailing jobs.
	Recipients int `json:"recipients,omitempty"`
}
