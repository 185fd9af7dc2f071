// Package mail implements email delivery for the registration system: the
// Mailer transport abstraction with typed transient errors, Liquid template
// rendering, the one-shot transactional send, and the bulk batch engine with
// per-message retry, differentiated backoff and jittered pacing.
package mail

import (
	"context"
	"fmt"
)

// Message is one rendered or renderable email. Template holds Liquid source;
// Context supplies its bindings. TextFallback is the plain-text alternative
// for clients that do not render HTML.
type Message struct {
	To           string
	Subject      string
	Template     string
	Context      map[string]any
	TextFallback string
}

// Mailer performs delivery of a single fully-rendered message. A fresh
// transport connection is opened per message so a stale connection can never
// poison subsequent sends.
type Mailer interface {
	// Send delivers one message. Failures are reported through the typed
	// errors below so callers can differentiate retry policy.
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// RateLimitError reports that the provider refused the message because the
// sender is over quota. Carries the provider's status code.
type RateLimitError struct {
	Code int
	Msg  string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by provider (code %d): %s", e.Code, e.Msg)
}

// ConnectionError reports a transport-level failure: dial, TLS or an
// unexpected connection drop.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SendError reports a provider rejection that is neither a rate limit nor a
// connection failure.
type SendError struct {
	Code int
	Msg  string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("provider rejected message (code %d): %s", e.Code, e.Msg)
}
