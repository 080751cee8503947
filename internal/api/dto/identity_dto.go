package dto

import "time"

// IdentityResponse exposes the authenticated caller to downstream clients.
type IdentityResponse struct {
	UserID string `json:"user.id"`
}

// AuthActivityItem is one audited decision in the caller's history.
type AuthActivityItem struct {
	ID          string    `json:"id"`
	Outcome     string    `json:"outcome"`
	FailureKind *string   `json:"failure_kind,omitempty"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	DecidedAt   time.Time `json:"decided_at"`
}
