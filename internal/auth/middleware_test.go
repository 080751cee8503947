package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/agent-gateway/pkg/util/errorutil"
)

type stubRecorder struct {
	mu        sync.Mutex
	decisions []Decision
}

func (r *stubRecorder) Record(_ context.Context, decision Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, decision)
}

func (r *stubRecorder) all() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Decision{}, r.decisions...)
}

func newGateApp(t *testing.T, recorder Recorder) (*fiber.App, *TokenValidator) {
	t.Helper()

	validator, err := NewTokenValidator(testSecret)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}})
		},
	})

	middleware := NewAuthMiddleware(validator, recorder)
	app.Use(middleware.Handle)
	app.Get("/resource", func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"user.id": identity.UserID})
	})
	app.Options("/resource", func(c *fiber.Ctx) error {
		_, ok := IdentityFromContext(c)
		assert.False(t, ok)
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, validator
}

func TestHandle_NoAuthorizationHeader(t *testing.T) {
	recorder := &stubRecorder{}
	app, _ := newGateApp(t, recorder)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "no authorization header found")

	decisions := recorder.all()
	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionDenied, decisions[0].Outcome)
	assert.Equal(t, FailureMissingCredential, decisions[0].FailureKind)
}

func TestHandle_WrongScheme(t *testing.T) {
	recorder := &stubRecorder{}
	app, _ := newGateApp(t, recorder)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Basic dXNlcjpwYXNz")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	decisions := recorder.all()
	require.Len(t, decisions, 1)
	assert.Equal(t, FailureMissingScheme, decisions[0].FailureKind)
}

func TestHandle_EmptyToken(t *testing.T) {
	recorder := &stubRecorder{}
	app, _ := newGateApp(t, recorder)

	for _, header := range []string{"Bearer", "Bearer "} {
		req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
		req.Header.Set(fiber.HeaderAuthorization, header)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "no token provided")
	}

	for _, decision := range recorder.all() {
		assert.Equal(t, FailureMissingCredential, decision.FailureKind)
	}
}

func TestHandle_OptionsBypass(t *testing.T) {
	recorder := &stubRecorder{}
	app, _ := newGateApp(t, recorder)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodOptions, "/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Empty(t, recorder.all())
}

func TestHandle_ValidToken(t *testing.T) {
	recorder := &stubRecorder{}
	app, validator := newGateApp(t, recorder)

	token, err := validator.Sign("123e4567-e89b-12d3-a456-426614174000", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "123e4567-e89b-12d3-a456-426614174000")

	decisions := recorder.all()
	require.Len(t, decisions, 1)
	assert.Equal(t, DecisionAllowed, decisions[0].Outcome)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", decisions[0].UserID)
	assert.Equal(t, fiber.MethodGet, decisions[0].Method)
	assert.Equal(t, "/resource", decisions[0].Path)
	assert.False(t, decisions[0].At.IsZero())
}

func TestHandle_SchemeIsCaseInsensitive(t *testing.T) {
	app, validator := newGateApp(t, nil)

	token, err := validator.Sign("agent-7", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set(fiber.HeaderAuthorization, "bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandle_InvalidSignature(t *testing.T) {
	recorder := &stubRecorder{}
	app, _ := newGateApp(t, recorder)

	forged, err := func() (string, error) {
		other, err := NewTokenValidator("a-different-secret")
		if err != nil {
			return "", err
		}
		return other.Sign("agent-7", time.Hour)
	}()
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+forged)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "invalid token signature")

	decisions := recorder.all()
	require.Len(t, decisions, 1)
	assert.Equal(t, FailureSignatureMismatch, decisions[0].FailureKind)
	assert.NotEmpty(t, decisions[0].Diagnostic)
}
