package model

// Claims is the identity payload embedded in and recovered from signed tokens.
// UserID is carried as an opaque string; callers that need a typed identifier
// parse it explicitly and treat failure as a malformed payload.
type Claims struct {
	UserID string
	Email  string
}

// TokenManager generates and validates access/refresh tokens. Access and
// refresh tokens are signed with independent secrets and are never verifiable
// with each other's secret.
type TokenManager interface {
	GenerateAccessToken(claims Claims) (string, error)
	GenerateRefreshToken(claims Claims) (string, error)
	ParseAccessToken(token string) (Claims, error)
	ParseRefreshToken(token string) (Claims, error)
}
