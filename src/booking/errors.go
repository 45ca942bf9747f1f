package booking

import "errors"

var (
	ErrCanceled         = errors.New("booking: reconciliation canceled")
	ErrMalformedPayload = errors.New("booking: malformed upstream payload")
)
