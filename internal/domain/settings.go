package domain

import (
	"time"

	"github.com/google/uuid"
)

// Settings is the single operator-managed configuration record: feature
// toggles, the current season pointer, and payment gateway credentials.
type Settings struct {
	ID uuid.UUID `json:"id"`

	EnableRegistration bool       `json:"enable_registration"`
	CurrentSeasonID    *uuid.UUID `json:"current_season_id,omitempty"`
	ShowPointsTable    bool       `json:"show_points_table"`
	EnableResults      bool       `json:"enable_results"`

	AlertMessage string `json:"alert_message"`

	RazorpayKeyID     string `json:"razorpay_key_id"`
	RazorpayKeySecret string `json:"-"` // Never expose the secret in JSON
	CallbackURL       string `json:"callback_url"`
	PointsTableURL    string `json:"points_table_url"`

	CreatedAt time.Time `json:"created_at"`
}

// DefaultSettings returns a fresh settings record with registration enabled
// and everything else off.
func DefaultSettings() *Settings {
	return &Settings{
		ID:                 uuid.New(),
		EnableRegistration: true,
		CreatedAt:          time.Now().UTC(),
	}
}

// TemplateContext exposes the settings fields email templates are allowed to
// reference. The secret key is deliberately excluded.
func (s *Settings) TemplateContext() map[string]any {
	return map[string]any{
		"alert_message":    s.AlertMessage,
		"points_table_url": s.PointsTableURL,
		"callback_url":     s.CallbackURL,
	}
}
