package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// weakPasswords are substrings that disqualify a password outright,
// regardless of the character-class rules.
var weakPasswords = []string{
	"password",
	"123456",
	"qwerty",
	"abc123",
	"letmein",
	"welcome",
	"admin",
}

// ValidationError is a user-correctable input rejection. It maps to a 400
// and its message is safe to show to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ValidateUsername enforces the account-name policy: 3-20 characters from
// [A-Za-z0-9_].
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLen {
		return &ValidationError{Field: "username", Reason: fmt.Sprintf("must be at least %d characters long", UsernameMinLen)}
	}
	if len(username) > UsernameMaxLen {
		return &ValidationError{Field: "username", Reason: fmt.Sprintf("cannot be longer than %d characters", UsernameMaxLen)}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Reason: "may only contain letters, numbers and underscores"}
	}
	return nil
}

// ValidatePassword enforces the password policy: 6-50 characters, at least
// one upper-case letter, one lower-case letter and one digit, and no common
// weak-password substring.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters long", PasswordMinLen)}
	}
	if len(password) > PasswordMaxLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("cannot be longer than %d characters", PasswordMaxLen)}
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return &ValidationError{Field: "password", Reason: "must contain an upper-case letter, a lower-case letter and a digit"}
	}

	lowered := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if strings.Contains(lowered, weak) {
			return &ValidationError{Field: "password", Reason: "is too common"}
		}
	}
	return nil
}
