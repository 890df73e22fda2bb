package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vterekhov/authgate/internal/model"
)

// Claims represents JWT claims carrying the identity payload and token type.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrSameSecret is returned when access and refresh secrets are not distinct.
// Sharing one secret would make short- and long-lived tokens interchangeable,
// so this is rejected at construction time rather than silently accepted.
var ErrSameSecret = errors.New("access and refresh secrets must be distinct")

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC with independent
// secrets for access and refresh tokens.
type JWT struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWT creates a token manager. Both secrets must be non-empty and must
// differ from each other.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*JWT, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, ErrSameSecret
	}

	return &JWT{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(claims model.Claims) (string, error) {
	return j.generate(claims, typeAccess, j.accessSecret, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token.
func (j *JWT) GenerateRefreshToken(claims model.Claims) (string, error) {
	return j.generate(claims, typeRefresh, j.refreshSecret, j.refreshTTL)
}

// ParseAccessToken verifies signature and expiry against the access secret
// and recovers the identity payload.
func (j *JWT) ParseAccessToken(tokenString string) (model.Claims, error) {
	return j.parse(tokenString, typeAccess, j.accessSecret)
}

// ParseRefreshToken verifies signature and expiry against the refresh secret
// and recovers the identity payload.
func (j *JWT) ParseRefreshToken(tokenString string) (model.Claims, error) {
	return j.parse(tokenString, typeRefresh, j.refreshSecret)
}

func (j *JWT) generate(claims model.Claims, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Fresh jti on every token. HS256 is deterministic and iat/exp
			// have second granularity, so without it two tokens minted in
			// the same second for the same user would be byte-identical and
			// collide in the refresh token ledger.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

func (j *JWT) parse(tokenString, tokenType string, secret []byte) (model.Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return model.Claims{}, fmt.Errorf("failed to parse %s token: %w", tokenType, err)
	}
	if !token.Valid {
		return model.Claims{}, fmt.Errorf("%s token is invalid", tokenType)
	}
	if claims.TokenType != tokenType {
		return model.Claims{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}

	return model.Claims{UserID: claims.UserID, Email: claims.Email}, nil
}
