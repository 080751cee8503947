package auth

import (
	"context"
	"time"
)

// DecisionOutcome tells whether a gated request was let through.
type DecisionOutcome string

const (
	DecisionAllowed DecisionOutcome = "allowed"
	DecisionDenied  DecisionOutcome = "denied"
)

// Decision is the structured record emitted for every gated request.
// UserID is set on allowed decisions; FailureKind and Diagnostic on denied
// ones. Diagnostic may contain library error text and stays internal.
type Decision struct {
	Outcome     DecisionOutcome
	UserID      string
	FailureKind FailureKind
	Diagnostic  string
	Method      string
	Path        string
	At          time.Time
}

// Recorder receives decisions for out-of-band processing. Implementations
// must not block the request path.
type Recorder interface {
	Record(ctx context.Context, decision Decision)
}
