package tracker

import "errors"

// Failure kinds shared across pipeline stages. Call sites wrap these with
// fmt.Errorf and callers classify with errors.Is.
var (
	// ErrNetworkUnavailable marks connection failures and timeouts.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrMalformedResponse marks unparseable structure from a page or service.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrQuotaExceeded marks AI service quota exhaustion. It never halts the
	// pipeline; the scorer falls back to heuristic scoring.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrValidationFailed marks a record that violates schema or bounds before
	// it is committed to a store.
	ErrValidationFailed = errors.New("validation failed")
)
