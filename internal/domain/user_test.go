package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel() // Enable parallel execution
	user, err := NewUser("learner@example.com", "Asia/Tokyo")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.NewCardsPerDayLimit != DefaultNewCardsPerDayLimit {
		t.Errorf("Expected default limit %d, got %d",
			DefaultNewCardsPerDayLimit, user.NewCardsPerDayLimit)
	}

	if user.IsAnonymous() {
		t.Error("Expected registered user not to be anonymous")
	}

	// Test invalid email
	_, err = NewUser("not-an-email", "")
	if err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	// Test empty email
	_, err = NewUser("", "")
	if err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	// Test invalid time zone
	_, err = NewUser("learner@example.com", "Mars/Olympus_Mons")
	if err != ErrInvalidTimeZone {
		t.Errorf("Expected error %v, got %v", ErrInvalidTimeZone, err)
	}
}

func TestUserIsAnonymous(t *testing.T) {
	t.Parallel() // Enable parallel execution
	var nilUser *User
	if !nilUser.IsAnonymous() {
		t.Error("Expected nil user to be anonymous")
	}

	zeroUser := &User{}
	if !zeroUser.IsAnonymous() {
		t.Error("Expected zero-ID user to be anonymous")
	}
}

func TestUserLocation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	user := &User{TimeZone: ""}
	loc, err := user.Location()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Expected UTC for empty time zone, got %v", loc)
	}

	user.TimeZone = "America/New_York"
	loc, err = user.Location()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("Expected America/New_York, got %v", loc)
	}

	user.TimeZone = "bogus"
	if _, err = user.Location(); err != ErrInvalidTimeZone {
		t.Errorf("Expected error %v, got %v", ErrInvalidTimeZone, err)
	}

	var nilUser *User
	loc, err = nilUser.Location()
	if err != nil {
		t.Fatalf("Expected no error for nil user, got %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Expected UTC for nil user, got %v", loc)
	}
}
