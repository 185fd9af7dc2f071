package mail

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/osteele/liquid"
)

// Retry policy for batch delivery. Each recipient gets up to maxAttempts
// delivery attempts; the wait between attempts depends on the error class.
const (
	maxAttempts = 10

	// rateLimitCooldown is the fixed wait after a provider rate-limit reply.
	rateLimitCooldown = 15 * time.Second

	// connBackoffCeiling caps exponential backoff for connection failures.
	connBackoffCeiling = 30 * time.Second

	// sendBackoffCeiling caps exponential backoff for provider rejections.
	sendBackoffCeiling = 15 * time.Second

	// genericRetryDelay is the fixed wait for unclassified errors.
	genericRetryDelay = 3 * time.Second

	// backoffBase is the first exponential backoff step.
	backoffBase = time.Second
)

// PacingWindow bounds the randomized delay between consecutive recipients
// within one batch job.
type PacingWindow struct {
	Min time.Duration
	Max time.Duration
}

// Pacing presets. Result announcements are paced slower than routine
// confirmation mailings.
var (
	DefaultPacing = PacingWindow{Min: 3 * time.Second, Max: 5 * time.Second}
	ResultsPacing = PacingWindow{Min: 5 * time.Second, Max: 8 * time.Second}
)

// Recipient is one entry in a batch job: an address plus the bindings its
// rendering uses.
type Recipient struct {
	To      string
	Context map[string]any
}

// BatchJob is one atomic unit of bulk mail work. Recipients are processed
// strictly in list order within a single worker slot; Settings is merged
// into every recipient's template context under the "settings" key.
type BatchJob struct {
	Subject    string
	Template   string
	Text       string
	Recipients []Recipient
	Settings   map[string]any
	Pacing     PacingWindow

	// OnDelivered, when set, is invoked after each successful delivery.
	OnDelivered func(Recipient)
}

// BatchSummary reports a finished batch job.
type BatchSummary struct {
	Sent   int
	Failed int
	Total  int
}

// Sender renders and delivers email. It backs both dispatcher flavors: the
// single-attempt transactional path and the retrying batch path.
type Sender struct {
	mailer    Mailer
	templates *TemplateService
	logger    *slog.Logger

	// sleep and jitter are replaceable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(window PacingWindow) time.Duration
}

// NewSender creates a Sender.
func NewSender(mailer Mailer, templates *TemplateService, logger *slog.Logger) *Sender {
	return &Sender{
		mailer:    mailer,
		templates: templates,
		logger:    logger.With("component", "mail_sender"),
		sleep:     sleepContext,
		jitter:    uniformJitter,
	}
}

// builtinCacheKeys names the stock templates so their compiled form is
// reused; request-supplied templates get no key and are never retained.
var builtinCacheKeys = map[string]string{
	DefaultSuccessTemplate: "default-success",
}

// SendSingle renders and delivers one transactional message with exactly one
// attempt. Failures are returned for the caller (the worker pool) to log;
// they are never retried.
func (s *Sender) SendSingle(ctx context.Context, msg Message) error {
	html, err := s.templates.Render(builtinCacheKeys[msg.Template], msg.Template, msg.Context)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, msg.To, msg.Subject, html, msg.TextFallback); err != nil {
		return err
	}

	s.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// SendBatch delivers a batch job's recipients strictly sequentially,
// retrying each message per the policy above. One recipient's permanent
// failure never aborts the job; the returned summary is the job's only
// result and is also logged by the caller.
func (s *Sender) SendBatch(ctx context.Context, job BatchJob) BatchSummary {
	summary := BatchSummary{Total: len(job.Recipients)}

	// The template is compiled once for the whole job and dropped with it,
	// so ad-hoc mailing templates are not cached indefinitely.
	tpl, err := s.templates.Compile(job.Template)
	if err != nil {
		s.logger.Error("batch job failed: template parse", "error", err)
		summary.Failed = summary.Total
		return summary
	}

	pacing := job.Pacing
	if pacing.Max <= 0 {
		pacing = DefaultPacing
	}

	for i, rcpt := range job.Recipients {
		// Pacing applies between recipients, never before the first.
		if i > 0 {
			if err := s.sleep(ctx, s.jitter(pacing)); err != nil {
				s.logger.Error("batch job aborted", "delivered", i, "total", summary.Total)
				summary.Failed = summary.Total - summary.Sent
				return summary
			}
		}

		if s.deliverWithRetry(ctx, job, tpl, rcpt) {
			summary.Sent++
			if job.OnDelivered != nil {
				job.OnDelivered(rcpt)
			}
		} else {
			summary.Failed++
		}
	}

	return summary
}

// deliverWithRetry attempts one recipient up to maxAttempts times, choosing
// the wait between attempts from the error class. Returns whether the
// message was ultimately delivered.
func (s *Sender) deliverWithRetry(ctx context.Context, job BatchJob, tpl *liquid.Template, rcpt Recipient) bool {
	logger := s.logger.With("to", rcpt.To, "subject", job.Subject)

	bindings := make(map[string]any, len(rcpt.Context)+1)
	for k, v := range rcpt.Context {
		bindings[k] = v
	}
	if job.Settings != nil {
		bindings["settings"] = job.Settings
	}

	html, err := tpl.RenderString(bindings)
	if err != nil {
		// Rendering is deterministic; retrying cannot help.
		logger.Error("recipient failed: template render", "error", err)
		return false
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.mailer.Send(ctx, rcpt.To, job.Subject, html, job.Text)
		if err == nil {
			logger.Info("batch email sent", "attempt", attempt)
			return true
		}

		if attempt == maxAttempts {
			logger.Error("recipient failed permanently",
				"attempts", attempt,
				"error", err)
			return false
		}

		delay := retryDelay(err, attempt)
		logger.Warn("send failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err)

		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			logger.Error("recipient failed: job shutting down", "attempts", attempt)
			return false
		}
	}

	return false
}

// retryDelay picks the wait before the next attempt: a fixed cooldown for
// rate limits, exponential backoff with a class-specific ceiling for
// connection and provider errors, and a short fixed delay otherwise.
func retryDelay(err error, attempt int) time.Duration {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return rateLimitCooldown
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return expBackoff(attempt, connBackoffCeiling)
	}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return expBackoff(attempt, sendBackoffCeiling)
	}

	return genericRetryDelay
}

// expBackoff returns backoffBase doubled per attempt, capped at ceiling.
func expBackoff(attempt int, ceiling time.Duration) time.Duration {
	d := backoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// uniformJitter draws a delay uniformly from the pacing window.
func uniformJitter(window PacingWindow) time.Duration {
	if window.Max <= window.Min {
		return window.Min
	}
	return window.Min + time.Duration(rand.Int63n(int64(window.Max-window.Min)))
}

// sleepContext blocks for d or until the context is cancelled. Only the
// worker slot running the job blocks, never the submitter.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
