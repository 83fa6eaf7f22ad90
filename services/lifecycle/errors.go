package lifecycle

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not permitted for this role")
	ErrInvalidState = errors.New("invalid listing state")
	// ErrListingNotFound is an InvalidState specialization: errors.Is(err, ErrInvalidState) holds.
	ErrListingNotFound = fmt.Errorf("%w: listing not found", ErrInvalidState)
	ErrPayout          = errors.New("payout failed")
)

// PayoutError reports a failed or undecided payout. The listing is left SCHEDULED.
type PayoutError struct {
	ListingID string
	Message   string
	Err       error
}

func (e *PayoutError) Error() string {
	msg := fmt.Sprintf("payout for listing %s failed", e.ListingID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayoutError) Unwrap() error {
	return e.Err
}

func (e *PayoutError) Is(target error) bool {
	return target == ErrPayout
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func authError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func invalidStateError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
