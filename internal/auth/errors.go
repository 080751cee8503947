package auth

import "fmt"

// FailureKind classifies why a credential was rejected. The value doubles as
// the label used in logs, metrics, and audit records.
type FailureKind string

const (
	FailureExpired           FailureKind = "expired"
	FailureSignatureMismatch FailureKind = "signature_mismatch"
	FailureMalformed         FailureKind = "malformed"
	FailureWrongType         FailureKind = "wrong_type"
	FailureMissingSubject    FailureKind = "missing_subject"
	FailureMissingCredential FailureKind = "missing_credential"
	FailureMissingScheme     FailureKind = "missing_scheme"
)

// ValidationError is the typed rejection produced by token validation.
// Message is safe to return to clients; the wrapped cause is not.
type ValidationError struct {
	Kind    FailureKind
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func newValidationError(kind FailureKind, message string, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Message: message, cause: cause}
}
