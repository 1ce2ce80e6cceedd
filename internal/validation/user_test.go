package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "chef_anna", false},
		{"valid with dots and plus", "cook.anna+test", false},
		{"valid with at sign", "anna@kitchen", false},
		{"empty", "", true},
		{"reserved me", "me", true},
		{"spaces", "anna cook", true},
		{"illegal chars", "anna!", true},
		{"max length ok", strings.Repeat("a", 150), false},
		{"too long", strings.Repeat("a", 151), true},
		{"cyrillic max length counts runes", strings.Repeat("ж", 150), false},
		{"cyrillic too long", strings.Repeat("ж", 151), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "anna@example.com", false},
		{"valid subdomain", "anna@mail.example.co.uk", false},
		{"missing at", "annaexample.com", true},
		{"missing domain", "anna@", true},
		{"missing tld", "anna@example", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "GoodPassword1", false},
		{"minimum length", "12345678", false},
		{"too short", "1234567", true},
		{"too long", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("first_name", "Anna"))
	assert.Error(t, ValidateName("first_name", ""))
	assert.Error(t, ValidateName("last_name", strings.Repeat("a", 151)))
	// Multibyte names are measured in characters, not bytes
	assert.NoError(t, ValidateName("first_name", strings.Repeat("ё", 150)))
}
