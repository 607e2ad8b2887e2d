package protocol

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a driver error for the purposes of retry, fallback,
// and caller-facing diagnostics (spec §7).
type ErrorKind int

const (
	// KindUnknown is the zero value; never produced by this package.
	KindUnknown ErrorKind = iota
	// KindArgument is an argument validation failure. Fails fast, never retried.
	KindArgument
	// KindIllegalState is a state violation such as using a disposed handle.
	KindIllegalState
	// KindTimeout is an overall operation deadline exceeded.
	KindTimeout
	// KindCancelled is an externally requested cancellation.
	KindCancelled
	// KindBadProtocol is a malformed or out-of-range wire field. Fatal.
	KindBadProtocol
	// KindUnsupportedProtocol triggers serial-version fallback.
	KindUnsupportedProtocol
	// KindUnsupportedQueryVersion triggers query-version fallback.
	KindUnsupportedQueryVersion
	// KindRetryableNoSQL is the superset of throttling, security-info-not-ready,
	// and invalid-authorization. Retried per the retry policy.
	KindRetryableNoSQL
	// KindRetryableNetwork is a transport-classified transient network error.
	KindRetryableNetwork
	// KindNonRetryableNoSQL covers table-not-found, schema errors, quota
	// violations, and similar conditions that are surfaced immediately.
	KindNonRetryableNoSQL
)

// String implements the Stringer interface.
func (k ErrorKind) String() string {
	switch k {
	case KindArgument:
		return "ARGUMENT"
	case KindIllegalState:
		return "ILLEGAL_STATE"
	case KindTimeout:
		return "TIMEOUT"
	case KindCancelled:
		return "CANCELLED"
	case KindBadProtocol:
		return "BAD_PROTOCOL"
	case KindUnsupportedProtocol:
		return "UNSUPPORTED_PROTOCOL"
	case KindUnsupportedQueryVersion:
		return "UNSUPPORTED_QUERY_VERSION"
	case KindRetryableNoSQL:
		return "RETRYABLE_NOSQL"
	case KindRetryableNetwork:
		return "RETRYABLE_NETWORK"
	case KindNonRetryableNoSQL:
		return "NON_RETRYABLE_NOSQL"
	default:
		return "UNKNOWN"
	}
}

// NoSQLSubKind further classifies a KindRetryableNoSQL or KindNonRetryableNoSQL
// error for the retry policy's decision table and the completion waiter.
type NoSQLSubKind int

const (
	SubKindNone NoSQLSubKind = iota
	SubKindReadThrottle
	SubKindWriteThrottle
	SubKindControlOpThrottle
	SubKindSecurityInfoNotReady
	SubKindInvalidAuthorization
	SubKindTableNotFound
)

// Error is the stable error type surfaced by the driver.
type Error struct {
	Kind     ErrorKind
	SubKind  NoSQLSubKind
	Message  string
	Cause    error
	Elapsed  time.Duration // set on KindTimeout
	Retries  int           // set on KindTimeout
	Opcode   byte          // originating request opcode, when known
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Kind == KindTimeout {
		msg = fmt.Sprintf("%s (elapsed %s, retries %d)", msg, e.Elapsed, e.Retries)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes the wrapped cause so errors.Is/As work across retries.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewNoSQLError builds a retryable or non-retryable NoSQL error with a sub-kind.
func NewNoSQLError(kind ErrorKind, sub NoSQLSubKind, format string, args ...any) *Error {
	return &Error{Kind: kind, SubKind: sub, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewTimeoutError builds the final error raised when the cumulative retry
// budget is exceeded, chaining the last exception as its cause.
func NewTimeoutError(elapsed time.Duration, retries int, cause error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: "operation timed out",
		Cause:   cause,
		Elapsed: elapsed,
		Retries: retries,
	}
}

// ErrBadProtocol is a sentinel wrapped by field-specific bad-protocol errors
// produced while decoding (spec §6.1: "negative counts, missing required
// fields ... are fatal bad-protocol errors").
var ErrBadProtocol = &Error{Kind: KindBadProtocol, Message: "bad protocol"}

// ErrShortMessage is returned when a Message buffer runs out of bytes mid-decode.
var ErrShortMessage = &Error{Kind: KindBadProtocol, Message: "truncated message"}

// ErrCancelled is returned verbatim when a cancellation signal fires.
var ErrCancelled = &Error{Kind: KindCancelled, Message: "operation cancelled"}

// ErrDisposed is returned once the client handle has been disposed.
var ErrDisposed = &Error{Kind: KindIllegalState, Message: "client handle disposed"}

// IsKind reports whether err (or something it wraps) is a *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// SubKindOf returns the NoSQLSubKind carried by err, or SubKindNone.
func SubKindOf(err error) NoSQLSubKind {
	var e *Error
	if errors.As(err, &e) {
		return e.SubKind
	}
	return SubKindNone
}
