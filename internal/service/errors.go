// Package service provides application-level services for registrations,
// payments, mailings and background job submission.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrRegistrationClosed indicates the season is not accepting new
	// registrations. Maps to HTTP 403.
	ErrRegistrationClosed = errors.New("season is not accepting registrations")

	// ErrAlreadyRegistered indicates the account already has a registration
	// for the season. Maps to HTTP 409.
	ErrAlreadyRegistered = errors.New("account already registered for this season")

	// ErrFormNotEditable indicates the season no longer allows edits to
	// submitted registrations. Maps to HTTP 403.
	ErrFormNotEditable = errors.New("registration form is no longer editable")

	// ErrInvalidCredentials indicates a failed username/password check.
	// Maps to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidSignature indicates a payment callback whose signature did
	// not verify. Maps to HTTP 400; the payment is marked failed.
	ErrInvalidSignature = errors.New("payment signature verification failed")

	// ErrJobQueueFull indicates a background job could not be enqueued
	// because its pool queue is at capacity. Maps to HTTP 503.
	ErrJobQueueFull = errors.New("background job queue is full")

	// ErrNoRecipients indicates a bulk mailing matched no registrations.
	ErrNoRecipients = errors.New("mailing matched no recipients")
)
