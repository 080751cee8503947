package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-gateway/internal/api/dto"
	"github.com/spec-kit/agent-gateway/internal/auth"
	"github.com/spec-kit/agent-gateway/internal/service"
	apperrors "github.com/spec-kit/agent-gateway/pkg/util/errorutil"
)

// IdentityHandler serves the authenticated caller surface.
type IdentityHandler struct {
	audit *service.AuditService
}

// NewIdentityHandler returns a new handler instance.
func NewIdentityHandler(audit *service.AuditService) *IdentityHandler {
	return &IdentityHandler{audit: audit}
}

// Me echoes the identity the auth gate attached to the request.
func (h *IdentityHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no authenticated identity")
	}
	return c.JSON(fiber.Map{"data": dto.IdentityResponse{UserID: identity.UserID}})
}

// Activity lists the caller's recent auth decisions from the audit log.
func (h *IdentityHandler) Activity(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no authenticated identity")
	}

	limit := c.QueryInt("limit", 0)
	records, err := h.audit.Recent(c.UserContext(), identity.UserID, limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.AuthActivityItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AuthActivityItem{
			ID:          record.ID,
			Outcome:     record.Outcome,
			FailureKind: record.FailureKind,
			Method:      record.Method,
			Path:        record.Path,
			DecidedAt:   record.DecidedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
