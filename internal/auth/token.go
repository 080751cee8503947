package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenTypeAgentAccess = "agent_access"

// Identity is the authenticated principal exposed to downstream handlers.
// It is only ever constructed after signature, type, and subject checks pass.
type Identity struct {
	UserID string
}

// Claims describes the JWT payload of agent access tokens.
type Claims struct {
	TokenType string `json:"type"`
	UserID    string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenValidator verifies agent access tokens against a shared secret.
// It holds no mutable state and is safe for concurrent use.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator builds a validator. An empty secret is a configuration
// fault and is rejected here, once, at startup.
func NewTokenValidator(secret string) (*TokenValidator, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret must not be empty")
	}
	return &TokenValidator{secret: []byte(secret)}, nil
}

// Validate verifies the token signature and expiry, then checks the type and
// subject claims. A non-nil error is always a *ValidationError.
func (v *TokenValidator) Validate(tokenStr string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, classifyParseError(err)
	}

	if claims.TokenType != tokenTypeAgentAccess {
		return Identity{}, newValidationError(FailureWrongType, "invalid token type", nil)
	}
	if claims.UserID == "" {
		return Identity{}, newValidationError(FailureMissingSubject, "token missing subject", nil)
	}

	return Identity{UserID: claims.UserID}, nil
}

// Sign issues a token with the claim shape Validate expects. It exists for
// contract symmetry with external issuers; the service never exposes it.
func (v *TokenValidator) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: tokenTypeAgentAccess,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// classifyParseError maps golang-jwt sentinel errors onto the failure
// taxonomy. Branching is on errors.Is, never on message text.
func classifyParseError(err error) *ValidationError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return newValidationError(FailureExpired, "token expired", err)
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return newValidationError(FailureSignatureMismatch, "invalid token signature", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return newValidationError(FailureSignatureMismatch, "invalid token signature", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newValidationError(FailureMalformed, "malformed token", err)
	default:
		return newValidationError(FailureMalformed, "malformed token", err)
	}
}
