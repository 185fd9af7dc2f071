package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedMailer returns the scripted error for each successive call to a
// given address, then succeeds once the script is exhausted.
type scriptedMailer struct {
	scripts map[string][]error
	calls   map[string]int
	sent    []string
}

func newScriptedMailer() *scriptedMailer {
	return &scriptedMailer{
		scripts: make(map[string][]error),
		calls:   make(map[string]int),
	}
}

func (m *scriptedMailer) script(to string, errs ...error) {
	m.scripts[to] = errs
}

func (m *scriptedMailer) Send(_ context.Context, to, _, _, _ string) error {
	n := m.calls[to]
	m.calls[to]++
	if script := m.scripts[to]; n < len(script) {
		if err := script[n]; err != nil {
			return err
		}
	}
	m.sent = append(m.sent, to)
	return nil
}

type capturedSleep struct {
	delays []time.Duration
	err    error
}

func (c *capturedSleep) sleep(_ context.Context, d time.Duration) error {
	c.delays = append(c.delays, d)
	return c.err
}

func newTestSender(t *testing.T, mailer Mailer) (*Sender, *capturedSleep, *bytes.Buffer) {
	t.Helper()

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	sleeper := &capturedSleep{}
	s := NewSender(mailer, NewTemplateService(), logger)
	s.sleep = sleeper.sleep
	s.jitter = func(w PacingWindow) time.Duration { return w.Min }
	return s, sleeper, &logBuf
}

func batchOf(addrs ...string) BatchJob {
	job := BatchJob{
		Subject:  "TSPL Season 4 Selection",
		Template: "<p>Hello {{ name }}</p>",
		Text:     "Hello",
	}
	for _, a := range addrs {
		job.Recipients = append(job.Recipients, Recipient{
			To:      a,
			Context: map[string]any{"name": "Player"},
		})
	}
	return job
}

func TestSendBatch_AllSucceed(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	s, sleeper, _ := newTestSender(t, mailer)

	summary := s.SendBatch(context.Background(), batchOf("a@x.com", "b@x.com", "c@x.com"))

	assert.Equal(t, BatchSummary{Sent: 3, Failed: 0, Total: 3}, summary)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, mailer.sent)
	// Pacing between recipients only: two gaps for three messages.
	assert.Equal(t, []time.Duration{DefaultPacing.Min, DefaultPacing.Min}, sleeper.delays)
}

func TestSendBatch_RateLimitedRecipientRecovers(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	mailer.script("c@x.com",
		&RateLimitError{Code: 421, Msg: "too many connections"},
		&RateLimitError{Code: 421, Msg: "too many connections"},
	)
	s, sleeper, logBuf := newTestSender(t, mailer)

	summary := s.SendBatch(context.Background(), batchOf("a@x.com", "b@x.com", "c@x.com"))

	assert.Equal(t, BatchSummary{Sent: 3, Failed: 0, Total: 3}, summary)
	assert.Equal(t, 3, mailer.calls["c@x.com"])

	// Two pacing gaps plus two fixed rate-limit cooldowns.
	require.Len(t, sleeper.delays, 4)
	assert.Equal(t, rateLimitCooldown, sleeper.delays[2])
	assert.Equal(t, rateLimitCooldown, sleeper.delays[3])

	assert.Equal(t, 2, bytes.Count(logBuf.Bytes(), []byte(`"level":"WARN"`)))
	assert.Zero(t, bytes.Count(logBuf.Bytes(), []byte(`"level":"ERROR"`)))
}

func TestSendBatch_PermanentFailureDoesNotAbortJob(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	failures := make([]error, maxAttempts)
	for i := range failures {
		failures[i] = &SendError{Code: 550, Msg: "mailbox unavailable"}
	}
	mailer.script("b@x.com", failures...)
	s, _, logBuf := newTestSender(t, mailer)

	summary := s.SendBatch(context.Background(), batchOf("a@x.com", "b@x.com", "c@x.com"))

	assert.Equal(t, BatchSummary{Sent: 2, Failed: 1, Total: 3}, summary)
	assert.Equal(t, maxAttempts, mailer.calls["b@x.com"])
	assert.Equal(t, []string{"a@x.com", "c@x.com"}, mailer.sent)
	assert.Equal(t, 1, bytes.Count(logBuf.Bytes(), []byte(`"level":"ERROR"`)))
}

func TestSendBatch_RenderFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	s, _, _ := newTestSender(t, mailer)

	job := batchOf("a@x.com")
	job.Template = "{% invalid"

	summary := s.SendBatch(context.Background(), job)

	assert.Equal(t, BatchSummary{Sent: 0, Failed: 1, Total: 1}, summary)
	assert.Zero(t, mailer.calls["a@x.com"])
}

func TestSendBatch_AdHocTemplatesNotCached(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	s, _, _ := newTestSender(t, mailer)

	for i := 0; i < 3; i++ {
		job := batchOf("a@x.com")
		job.Template = fmt.Sprintf("<p>mailing %d: {{ name }}</p>", i)
		s.SendBatch(context.Background(), job)
	}

	cached := 0
	s.templates.cache.Range(func(_, _ any) bool {
		cached++
		return true
	})
	assert.Zero(t, cached)
}

func TestSendBatch_OnDeliveredHook(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	mailer.script("b@x.com", &SendError{Code: 550, Msg: "no"})
	s, _, _ := newTestSender(t, mailer)

	var delivered []string
	job := batchOf("a@x.com", "b@x.com")
	job.OnDelivered = func(r Recipient) { delivered = append(delivered, r.To) }

	s.SendBatch(context.Background(), job)

	// b recovers on its second attempt, so both fire.
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, delivered)
}

func TestSendBatch_SettingsMergedIntoContext(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	s, _, _ := newTestSender(t, mailer)

	job := BatchJob{
		Subject:  "Results",
		Template: "{{ name }}: {{ settings.alert_message }}",
		Recipients: []Recipient{
			{To: "a@x.com", Context: map[string]any{"name": "Player"}},
		},
		Settings: map[string]any{"alert_message": "see you saturday"},
	}

	summary := s.SendBatch(context.Background(), job)
	assert.Equal(t, 1, summary.Sent)
}

func TestSendBatch_CancellationStopsJob(t *testing.T) {
	t.Parallel()

	mailer := newScriptedMailer()
	s, sleeper, _ := newTestSender(t, mailer)
	sleeper.err = context.Canceled

	summary := s.SendBatch(context.Background(), batchOf("a@x.com", "b@x.com", "c@x.com"))

	// The first recipient needs no pacing and goes out; the job stops at
	// the first interrupted sleep.
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 2, summary.Failed)
}

func TestSendSingle(t *testing.T) {
	t.Parallel()

	t.Run("delivers rendered message", func(t *testing.T) {
		t.Parallel()

		mailer := newScriptedMailer()
		s, _, _ := newTestSender(t, mailer)

		err := s.SendSingle(context.Background(), Message{
			To:       "a@x.com",
			Subject:  "Registration Confirmed",
			Template: "<p>{{ reg_id }}</p>",
			Context:  map[string]any{"reg_id": "TSPL08260001"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"a@x.com"}, mailer.sent)
	})

	t.Run("single attempt only", func(t *testing.T) {
		t.Parallel()

		mailer := newScriptedMailer()
		mailer.script("a@x.com", &ConnectionError{Err: context.DeadlineExceeded})
		s, sleeper, _ := newTestSender(t, mailer)

		err := s.SendSingle(context.Background(), Message{
			To:       "a@x.com",
			Subject:  "Registration Confirmed",
			Template: "<p>hi</p>",
		})

		require.Error(t, err)
		assert.Equal(t, 1, mailer.calls["a@x.com"])
		assert.Empty(t, sleeper.delays)
	})
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"rate limit is fixed", &RateLimitError{Code: 421}, 1, 15 * time.Second},
		{"rate limit ignores attempt", &RateLimitError{Code: 452}, 7, 15 * time.Second},
		{"connection first attempt", &ConnectionError{Err: context.DeadlineExceeded}, 1, time.Second},
		{"connection doubles", &ConnectionError{Err: context.DeadlineExceeded}, 4, 8 * time.Second},
		{"connection caps at ceiling", &ConnectionError{Err: context.DeadlineExceeded}, 9, 30 * time.Second},
		{"send error doubles", &SendError{Code: 550}, 3, 4 * time.Second},
		{"send error caps lower", &SendError{Code: 550}, 9, 15 * time.Second},
		{"unclassified is short fixed", context.DeadlineExceeded, 5, 3 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, retryDelay(tc.err, tc.attempt))
		})
	}
}

func TestUniformJitter(t *testing.T) {
	t.Parallel()

	window := PacingWindow{Min: 3 * time.Second, Max: 5 * time.Second}
	for i := 0; i < 100; i++ {
		d := uniformJitter(window)
		assert.GreaterOrEqual(t, d, window.Min)
		assert.Less(t, d, window.Max)
	}

	assert.Equal(t, time.Second, uniformJitter(PacingWindow{Min: time.Second, Max: time.Second}))
}
