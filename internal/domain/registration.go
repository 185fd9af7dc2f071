package domain

import (
	"time"

	"github.com/google/uuid"
)

// Registration is a player's season-scoped enrollment record. It is keyed by
// the natural key (season, reg_id) in addition to its internal ID; reg_id is
// assigned by the store on first insert (see RegistrationStore).
type Registration struct {
	ID       uuid.UUID `json:"id"`
	SeasonID uuid.UUID `json:"season_id"`

	// RegID is the human-meaningful per-season identifier, e.g. TSPL06260001.
	RegID string `json:"reg_id"`

	AccountID uuid.UUID `json:"account_id"`

	PlayerName string `json:"player_name"`
	FatherName string `json:"father_name"`
	Category   string `json:"category"`
	Age        int    `json:"age"`

	// DOB is the date of birth as supplied, expected in YYYY-MM-DD form.
	DOB    string `json:"dob"`
	Gender string `json:"gender"`

	TShirtSize string `json:"tshirt_size"`
	Occupation string `json:"occupation"`
	Mobile     string `json:"mobile"`
	Whatsapp   string `json:"wathsapp_number"`
	Email      string `json:"email"`
	AdharCard  string `json:"adhar_card"`

	PlayerImage string `json:"player_image"`

	District string `json:"district"`
	Zone     string `json:"zone"`
	PinCode  int    `json:"pin_code"`
	Address  string `json:"address"`

	FirstPreference string `json:"first_preference"`
	BattingArm      string `json:"batting_arm"`
	Role            string `json:"role"`

	// TxID is the payment gateway transaction reference once captured.
	TxID string `json:"tx_id"`

	IsSelected  bool `json:"is_selected"`
	Points      int  `json:"points"`
	IsMailSent  bool `json:"is_mail_sent"`
	IsCompleted bool `json:"is_compleated"`

	CreatedAt time.Time `json:"created_at"`
}

// NewRegistration creates a Registration with a fresh ID, the zone derived
// from the district, and the default points marker. RegID is left empty for
// the store to assign.
func NewRegistration(seasonID, accountID uuid.UUID) *Registration {
	return &Registration{
		ID:        uuid.New(),
		SeasonID:  seasonID,
		AccountID: accountID,
		Points:    DefaultPlayerPoints,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the registration for structurally invalid data.
func (r *Registration) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRegistrationID
	}
	if r.SeasonID == uuid.Nil {
		return ErrEmptySeasonID
	}
	if r.AccountID == uuid.Nil {
		return ErrEmptyAccountID
	}
	if r.PlayerName == "" {
		return ErrEmptyPlayerName
	}
	if len(r.Mobile) != 10 {
		return ErrInvalidMobile
	}
	return nil
}

// ApplyZone recomputes the zone from the district. Called on every write so
// the zone can never drift from the district.
func (r *Registration) ApplyZone() {
	r.Zone = ZoneForDistrict(r.District)
}

// CalculateAge computes a player's age from a YYYY-MM-DD date-of-birth string
// as of the given day: the year difference, minus one when today's (month,
// day) falls before the birth (month, day). Any parse failure yields 0.
func CalculateAge(dob string, today time.Time) int {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return 0
	}

	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
