package external

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type ErrorKind int

const (
	RateLimited ErrorKind = iota + 1
	NotFound
	Timeout
	Malformed
	// Unavailable covers transport failures and 5xx answers that are not
	// timeouts.
	Unavailable
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate limited"
	case NotFound:
		return "not found"
	case Timeout:
		return "timeout"
	case Malformed:
		return "malformed response"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ProviderError is returned by every adapter for any non-success outcome,
// including 200 answers that carry an error notice or a "no data" sentinel.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is matches another *ProviderError by kind, and by provider when the target
// names one. This makes errors.Is(err, ErrRateLimited) work.
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return (t.Kind == 0 || t.Kind == e.Kind) && (t.Provider == "" || t.Provider == e.Provider)
}

var (
	ErrRateLimited = &ProviderError{Kind: RateLimited}
	ErrNotFound    = &ProviderError{Kind: NotFound}
	ErrTimeout     = &ProviderError{Kind: Timeout}
	ErrMalformed   = &ProviderError{Kind: Malformed}
	ErrUnavailable = &ProviderError{Kind: Unavailable}
)

func providerErr(provider string, kind ErrorKind, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// AsProviderError reports whether err carries a ProviderError.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func transportKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Unavailable
}
