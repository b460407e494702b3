package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidEmail(tt.email), "Email: %s", tt.email)
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "compass2026", true},
		{"too_short", "ab1", false},
		{"no_number", "onlyletters", false},
		{"no_letter", "1234567890", false},
		{"too_long", strings.Repeat("a1", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := IsValidPassword(tt.password)
			assert.Equal(t, tt.valid, ok)
			if !tt.valid {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

type inviteBody struct {
	ClientEmail string `json:"clientEmail" validate:"required,email"`
	Message     string `json:"message" validate:"max=10"`
	Mood        int    `json:"mood" validate:"min=1,max=5"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=active completed"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := Struct(inviteBody{ClientEmail: "c1@test.com", Mood: 3})
		assert.Empty(t, errs)
	})

	t.Run("reports json field names", func(t *testing.T) {
		errs := Struct(inviteBody{Message: strings.Repeat("x", 11), Mood: 9, Status: "paused"})
		assert.Equal(t, "clientEmail is required", errs["clientEmail"])
		assert.Equal(t, "message must be at most 10 characters", errs["message"])
		assert.Equal(t, "mood must be at most 5", errs["mood"])
		assert.Equal(t, "status must be one of: active completed", errs["status"])
	})

	t.Run("email format", func(t *testing.T) {
		errs := Struct(inviteBody{ClientEmail: "not-an-email", Mood: 1})
		assert.Equal(t, "clientEmail must be a valid email address", errs["clientEmail"])
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello\nworld", SanitizeString("hel\x00lo\nworld"))
	assert.Equal(t, "tab\tok", SanitizeString("tab\tok\x07"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab", TruncateString("ab", 3))
	assert.Equal(t, "héé", TruncateString("héééé", 3))
}
