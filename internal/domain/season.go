package domain

import (
	"time"

	"github.com/google/uuid"
)

// Season is one tournament edition that players register for. Registrations
// and payments are always scoped to a season.
type Season struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Year      string    `json:"year"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Amount is the registration fee in the smallest currency unit (paise).
	Amount int `json:"amount"`

	// AcceptResponse gates whether new registrations are accepted.
	AcceptResponse bool `json:"accept_response"`

	// FormEditable gates whether existing registrations may still be edited.
	FormEditable bool `json:"registration_form_editable"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSeason creates a Season with a fresh ID and timestamps.
func NewSeason(title, year string, start, end time.Time, amount int) (*Season, error) {
	season := &Season{
		ID:           uuid.New(),
		Title:        title,
		Year:         year,
		StartDate:    start,
		EndDate:      end,
		Amount:       amount,
		FormEditable: true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := season.Validate(); err != nil {
		return nil, err
	}

	return season, nil
}

// Validate checks the season for structurally invalid data.
func (s *Season) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySeasonID
	}
	if s.Title == "" {
		return ErrEmptySeasonTitle
	}
	if s.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DisplayAmount converts the fee from paise to rupees.
func (s *Season) DisplayAmount() float64 {
	return float64(s.Amount) / 100
}
