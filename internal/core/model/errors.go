package model

import "errors"

// Domain error taxonomy. Every error here is terminal for the triggering
// request: each one is a business-rule violation, not a transient fault.
// ErrUnavailable is the exception, marking storage I/O failures the caller
// may retry with backoff.
var (
	// ErrValidation covers missing or malformed required fields, including
	// missing punch evidence on a non-administrative punch.
	ErrValidation = errors.New("validation failed")

	// ErrBlockedEntrada is returned when an employee tries to clock in while
	// an open pair from a prior business day is still unresolved.
	ErrBlockedEntrada = errors.New("entrada blocked by pending exit")

	// ErrConflict is returned by the administrative override when the
	// employee has no open pair left to close.
	ErrConflict = errors.New("no open pair to close")

	// ErrInvalidTimestamp is returned when an administrative exit's effective
	// timestamp precedes the open entrada it would close.
	ErrInvalidTimestamp = errors.New("timestamp precedes open entrada")

	// ErrDuplicatePayment is returned when a payment already exists for the
	// referenced punch pair.
	ErrDuplicatePayment = errors.New("payment already registered for pair")

	// ErrMissingEvidence is returned when a payment carries no comprovante.
	ErrMissingEvidence = errors.New("comprovante is required")

	// ErrConcurrentEntrada is returned when the entrada gate passed but the
	// conditional insert lost a race against a concurrent submission.
	ErrConcurrentEntrada = errors.New("concurrent entrada rejected")

	// ErrUnavailable wraps storage faults so callers can tell retryable
	// infrastructure errors from business-rule rejections.
	ErrUnavailable = errors.New("store unavailable")
)
