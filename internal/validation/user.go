// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"foodgram/internal/models"
)

// usernameRegex mirrors the character set allowed in account names:
// word characters in any script plus dot, at-sign, plus and hyphen.
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if utf8.RuneCountInString(username) > models.MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", models.MaxUsernameLen)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and ./@/+/-/_ characters")
	}

	// "me" is a reserved path segment on the users API.
	if username == "me" {
		return fmt.Errorf("username %q is reserved", username)
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if utf8.RuneCountInString(email) > models.MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", models.MaxEmailLen)
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if utf8.RuneCountInString(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	return nil
}

// ValidateName checks a first or last name.
func ValidateName(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > models.MaxNameLen {
		return fmt.Errorf("%s must not exceed %d characters", field, models.MaxNameLen)
	}
	return nil
}
