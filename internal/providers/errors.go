package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a provider failure. The Kind decides retry behavior: only
// RateLimited, Timeout, and Unreachable are worth retrying.
type Kind int

const (
	// Unauthorized means the API rejected our credentials. Never retried.
	Unauthorized Kind = iota
	// RateLimited means the provider returned 429. Retried with backoff.
	RateLimited
	// Timeout means a single call exceeded its deadline. Retried.
	Timeout
	// Unreachable covers connection failures and persistent 5xx responses.
	Unreachable
	// MalformedResponse means the call succeeded at the HTTP level but the
	// body could not be interpreted. Never retried; the provider would just
	// send it again.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case RateLimited:
		return "rate limited"
	case Timeout:
		return "timeout"
	case Unreachable:
		return "unreachable"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every adapter. Provider and Model
// are always set so fatal errors can name the offending backend.
type Error struct {
	Kind     Kind
	Provider string
	Model    string
	Status   int
	Body     string
	Cause    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s (%s/%s)", e.Kind, e.Provider, e.Model)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) retryable() bool {
	switch e.Kind {
	case RateLimited, Timeout, Unreachable:
		return true
	}
	return false
}

// KindOf extracts the failure Kind from err. The second return is false when
// err is not a provider error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a provider error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// classifyTransport maps a transport-level error from http.Client.Do to a
// Kind. Deadline and net timeouts become Timeout; everything else is
// Unreachable.
func classifyTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Unreachable
}
