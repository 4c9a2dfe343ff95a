package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind string

const (
	// KindTransport covers dial, TLS, timeout and cancellation failures.
	KindTransport Kind = "transport"
	// KindStatus means the server answered outside the 2xx range.
	KindStatus Kind = "status"
	// KindDecode means the body could not be read or parsed as JSON.
	KindDecode Kind = "decode"
)

// ErrBodyTooLarge is wrapped by decode errors when a body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("fetch: response body too large")

// Error describes a failed fetch. StatusCode is set only for KindStatus.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch: %s: %s error (%d)", e.Op, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch: %s: %s error: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch: %s: %s error", e.Op, e.Kind)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a fetch error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Kind == kind
}

// StatusCode returns the upstream status of a KindStatus error, or 0.
func StatusCode(err error) int {
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindStatus {
		return 0
	}
	return fe.StatusCode
}
