package domain

import "time"

// Decision outcomes as stored in the audit log.
const (
	DecisionOutcomeAllowed = "allowed"
	DecisionOutcomeDenied  = "denied"
)

// AuthDecisionRecord is one persisted auth decision. UserID is set only on
// allowed decisions; FailureKind and Diagnostic only on denied ones.
type AuthDecisionRecord struct {
	ID          string
	Outcome     string
	UserID      *string
	FailureKind *string
	Diagnostic  *string
	Method      string
	Path        string
	DecidedAt   time.Time
	CreatedAt   time.Time
}
