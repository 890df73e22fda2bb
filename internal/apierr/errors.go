// Package apierr defines the closed set of failure kinds the service layer
// exposes to its callers. Every use case either returns a success value or
// exactly one *Error; anything else reaching the boundary is treated as an
// internal failure and reported without detail.
package apierr

import "fmt"

// Kind classifies a failure for boundary translation.
type Kind int

const (
	// KindValidation means an input precondition was violated.
	KindValidation Kind = iota + 1
	// KindAlreadyExists means a sign-up email collided with an existing user.
	KindAlreadyExists
	// KindInvalidCredentials means the email/password pair did not match.
	// Unknown email and wrong password intentionally collapse into this
	// single kind so callers cannot enumerate accounts.
	KindInvalidCredentials
	// KindTokenExpired means a token failed signature, expiry, or ledger
	// membership checks. The three causes are not distinguished.
	KindTokenExpired
	// KindInvalidPayload means a decoded token is missing a required claim.
	KindInvalidPayload
	// KindUserNotFound means the identity vanished between token issuance
	// and use.
	KindUserNotFound
)

// Token type tags carried by KindTokenExpired errors.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Error is the only error type that crosses the service boundary.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps input field names to reasons. Set for KindValidation only.
	Fields map[string]string
	// TokenType is "access" or "refresh". Set for KindTokenExpired only.
	TokenType string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationFailed reports one or more violated input preconditions.
func NewValidationFailed(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// NewEmailTaken reports a sign-up collision on email.
func NewEmailTaken(email string) *Error {
	return &Error{
		Kind:    KindAlreadyExists,
		Message: fmt.Sprintf("user with email %s already exists", email),
	}
}

// NewInvalidCredentials reports a failed sign-in with a deliberately
// generic message.
func NewInvalidCredentials() *Error {
	return &Error{
		Kind:    KindInvalidCredentials,
		Message: "invalid email or password",
	}
}

// NewTokenExpiredOrInvalid reports a token that failed verification or is no
// longer present in the ledger.
func NewTokenExpiredOrInvalid(tokenType string) *Error {
	return &Error{
		Kind:      KindTokenExpired,
		Message:   fmt.Sprintf("%s token has expired or is invalid", tokenType),
		TokenType: tokenType,
	}
}

// NewInvalidTokenPayload reports a structurally broken token payload.
func NewInvalidTokenPayload(reason string) *Error {
	return &Error{
		Kind:    KindInvalidPayload,
		Message: fmt.Sprintf("invalid token payload: %s", reason),
	}
}

// NewUserNotFound reports an identity that no longer exists.
func NewUserNotFound(identifier string) *Error {
	return &Error{
		Kind:    KindUserNotFound,
		Message: fmt.Sprintf("user not found: %s", identifier),
	}
}
