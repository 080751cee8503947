package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-gateway/internal/api/http/handlers"
	"github.com/spec-kit/agent-gateway/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Identity       *handlers.IdentityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Health endpoints are public; everything
// under /api/v1 sits behind the auth gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	api.Get("/me", cfg.Identity.Me)
	api.Get("/me/activity", cfg.Identity.Activity)
}
