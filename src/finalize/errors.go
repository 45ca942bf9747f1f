package finalize

import (
	"errors"
	"fmt"
)

// Business-rule failures. They are reported to the caller as the error text
// of the finalize result.
var (
	ErrNotFound          = errors.New("booking not found")
	ErrPaymentIncomplete = errors.New("payment not completed")
)

// TransportError means the finalize call itself did not complete: network
// failure, non-2xx status or an unreadable response.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("finalize transport: %s", e.Err.Error())
	}
	return fmt.Sprintf("finalize transport (%d): %s", e.StatusCode, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsLogical reports whether err is a business-rule failure rather than an
// infrastructure one.
func IsLogical(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPaymentIncomplete)
}
