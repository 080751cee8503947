package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/agent-gateway/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// AuthMiddleware gates requests on bearer-token validation.
type AuthMiddleware struct {
	validator *TokenValidator
	recorder  Recorder
}

// NewAuthMiddleware constructs middleware. The recorder may be nil.
func NewAuthMiddleware(validator *TokenValidator, recorder Recorder) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, recorder: recorder}
}

// Handle enforces authentication for protected routes. OPTIONS requests pass
// through untouched so CORS pre-flight works; that bypass attaches no
// identity and is not a security boundary.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return m.deny(c, newValidationError(FailureMissingCredential, "no authorization header found", nil))
	}

	// Proxies trim trailing whitespace, so "Bearer " can arrive as "Bearer".
	// Cut keeps that case on the missing-token path instead of the scheme one.
	scheme, rest, _ := strings.Cut(authHeader, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return m.deny(c, newValidationError(FailureMissingScheme, "authorization scheme must be Bearer", nil))
	}

	token := strings.TrimSpace(rest)
	if token == "" {
		return m.deny(c, newValidationError(FailureMissingCredential, "no token provided", nil))
	}

	identity, err := m.validator.Validate(token)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			verr = newValidationError(FailureMalformed, "malformed token", err)
		}
		return m.deny(c, verr)
	}

	m.record(c, Decision{Outcome: DecisionAllowed, UserID: identity.UserID})
	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *AuthMiddleware) deny(c *fiber.Ctx, verr *ValidationError) error {
	m.record(c, Decision{Outcome: DecisionDenied, FailureKind: verr.Kind, Diagnostic: verr.Error()})
	return apperrors.NewUnauthorized(verr.Message)
}

func (m *AuthMiddleware) record(c *fiber.Ctx, decision Decision) {
	if m.recorder == nil {
		return
	}
	decision.Method = c.Method()
	decision.Path = c.Path()
	decision.At = time.Now()
	m.recorder.Record(c.UserContext(), decision)
}

// IdentityFromContext retrieves the identity attached by Handle.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}
