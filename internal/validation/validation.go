// Package validation checks use-case input preconditions before any store
// access. Checks are aggregated: every failing field is reported at once.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	passwordMinLength  = 6
	displayNameMinimum = 2
	displayNameMaximum = 50
)

// SignUp validates sign-up input and returns a field-to-reason map.
// An empty map means the input is valid.
func SignUp(email, password, displayName string) map[string]string {
	fields := map[string]string{}

	if reason, ok := checkEmail(email); !ok {
		fields["email"] = reason
	}
	if reason, ok := checkPasswordPolicy(password); !ok {
		fields["password"] = reason
	}
	if reason, ok := checkDisplayName(displayName); !ok {
		fields["displayName"] = reason
	}

	return fields
}

// SignIn validates sign-in input. Password is only required to be non-empty:
// the strength policy applies at sign-up, not when comparing against a
// stored digest.
func SignIn(email, password string) map[string]string {
	fields := map[string]string{}

	if reason, ok := checkEmail(email); !ok {
		fields["email"] = reason
	}
	if password == "" {
		fields["password"] = "password is required"
	}

	return fields
}

func checkEmail(email string) (string, bool) {
	if strings.TrimSpace(email) == "" {
		return "email is required", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "please provide a valid email address", false
	}
	return "", true
}

func checkPasswordPolicy(password string) (string, bool) {
	if len(password) < passwordMinLength {
		return fmt.Sprintf("password must be at least %d characters", passwordMinLength), false
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasDigit || !hasSymbol {
		return "password must contain at least one uppercase letter, one number, and one special character", false
	}
	return "", true
}

func checkDisplayName(displayName string) (string, bool) {
	trimmed := strings.TrimSpace(displayName)
	// Limits are in characters, not bytes, so multibyte names are measured
	// by rune count.
	length := utf8.RuneCountInString(trimmed)
	if length < displayNameMinimum {
		return fmt.Sprintf("name must be at least %d characters", displayNameMinimum), false
	}
	if length > displayNameMaximum {
		return fmt.Sprintf("display name cannot exceed %d characters", displayNameMaximum), false
	}
	return "", true
}
