package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateEmail    = errors.New("email already in use")
	ErrInvalidToken      = errors.New("invalid or expired action token")
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNoRecipientNotified is returned by the notification resolver when
	// every tier of the cascade failed to reach a recipient. Callers log it;
	// it must never fail the registration or transition that triggered it.
	ErrNoRecipientNotified = errors.New("no notification recipient could be reached")
)

// AlreadyProcessedError reports that a single-use transition was attempted on
// a visitor whose approval has already been settled. It carries the current
// status so the caller can render an informative message. Double-submission
// (two admins racing, an email link clicked twice) makes this a normal
// outcome, not a fault.
type AlreadyProcessedError struct {
	Current VisitorStatus
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("visitor already processed: current status is %s", e.Current)
}
