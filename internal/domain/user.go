package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultNewCardsPerDayLimit is the account-level daily budget of new cards
// applied when a user has no explicit limit configured.
const DefaultNewCardsPerDayLimit = 20

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidDayLimit  = errors.New("new cards per day limit must be greater than zero")
	ErrInvalidTimeZone  = errors.New("invalid time zone name")
	ErrNegativeOverride = errors.New("new cards per day limit override cannot be negative")
)

// User represents a registered user of the application.
//
// A nil *User stands for an anonymous (unauthenticated) visitor; all review
// availability decisions treat anonymous users as having nothing to review
// and no daily budget.
type User struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	TimeZone            string    `json:"time_zone"` // IANA name; empty means UTC
	NewCardsPerDayLimit int       `json:"new_cards_per_day_limit"`

	// NewCardsPerDayLimitOverride is the user-adopted raised daily limit, if
	// the user chose to keep studying past their configured limit today.
	// Persisted by the account layer; nil means no override in effect.
	NewCardsPerDayLimitOverride *int `json:"new_cards_per_day_limit_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and time zone, applying the
// default daily new-card limit. It generates a new UUID for the user ID and
// sets the creation/update timestamps.
// Returns an error if validation fails.
func NewUser(email, timeZone string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:                  uuid.New(),
		Email:               email,
		TimeZone:            timeZone,
		NewCardsPerDayLimit: DefaultNewCardsPerDayLimit,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// IsAnonymous reports whether the user is an unauthenticated visitor.
// Safe to call on a nil receiver.
func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == uuid.Nil
}

// Location resolves the user's time zone to a *time.Location, defaulting to
// UTC when no time zone is configured. Returns an error for malformed names.
func (u *User) Location() (*time.Location, error) {
	if u == nil || u.TimeZone == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return nil, ErrInvalidTimeZone
	}
	return loc, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.NewCardsPerDayLimit <= 0 {
		return ErrInvalidDayLimit
	}

	if u.NewCardsPerDayLimitOverride != nil && *u.NewCardsPerDayLimitOverride < 0 {
		return ErrNegativeOverride
	}

	if u.TimeZone != "" {
		if _, err := time.LoadLocation(u.TimeZone); err != nil {
			return ErrInvalidTimeZone
		}
	}

	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.HasPrefix(domainPart, ".") &&
		!strings.HasSuffix(domainPart, ".")
}
