package domain

import "errors"

// Common validation errors shared by the domain entities.
var (
	ErrEmptyAccountID      = errors.New("account ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")

	ErrEmptySeasonID    = errors.New("season ID cannot be empty")
	ErrEmptySeasonTitle = errors.New("season title cannot be empty")

	ErrEmptyRegistrationID = errors.New("registration ID cannot be empty")
	ErrEmptyPlayerName     = errors.New("player name cannot be empty")
	ErrInvalidMobile       = errors.New("mobile number must be 10 digits")

	ErrEmptyOrderID      = errors.New("payment order ID cannot be empty")
	ErrInvalidAmount     = errors.New("amount cannot be negative")
	ErrUnknownPayStatus  = errors.New("unknown payment status")
	ErrSettingsIncomplete = errors.New("general settings record is incomplete")
)
