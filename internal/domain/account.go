package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account represents a player or administrator login identified by a unique
// username. Accounts are created either through live sign-up or implicitly by
// the CSV ingestion pipeline, which derives the initial password from the
// player's date of birth and mobile number.
type Account struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAccount creates an Account with a fresh ID and timestamps.
// The caller is responsible for hashing and setting the password.
func NewAccount(username, firstName, lastName, email string) (*Account, error) {
	account := &Account{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks the account for structurally invalid data.
func (a *Account) Validate() error {
	if a.ID == uuid.Nil {
		return ErrEmptyAccountID
	}
	if a.Username == "" {
		return ErrEmptyUsername
	}
	if a.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(a.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// SplitPlayerName splits a full player name on spaces: the first token becomes
// the first name and the remaining tokens, joined by a single space, become the
// last name. A single-token name yields an empty last name.
func SplitPlayerName(playerName string) (first, last string) {
	parts := strings.Split(playerName, " ")
	if len(parts) == 0 {
		return playerName, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// DerivePassword builds the initial password for an imported account: the
// date of birth with dashes removed followed by the last four characters of
// the mobile number.
func DerivePassword(dob, mobile string) string {
	suffix := mobile
	if len(mobile) > 4 {
		suffix = mobile[len(mobile)-4:]
	}
	return strings.ReplaceAll(dob, "-", "") + suffix
}

// validEmailFormat performs a minimal structural check: one '@' that is
// neither first nor last, and a dot inside the domain part.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
