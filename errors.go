package nosqldb

import "github.com/nosqldb/nosqldb-go/internal/protocol"

// Error is the stable error type surfaced by every driver operation. It is
// a re-export of the internal protocol package's error type, following the
// teacher's `type Error = protocol.Error` pattern: the wire and retry
// internals live in internal/protocol, but callers import only this
// package.
type Error = protocol.Error

// ErrorKind classifies an Error for branching logic in caller code.
type ErrorKind = protocol.ErrorKind

// NoSQLSubKind further classifies a retryable or non-retryable NoSQL error.
type NoSQLSubKind = protocol.NoSQLSubKind

// Error kinds, re-exported for caller-facing type switches.
const (
	KindArgument                = protocol.KindArgument
	KindIllegalState            = protocol.KindIllegalState
	KindTimeout                 = protocol.KindTimeout
	KindCancelled                = protocol.KindCancelled
	KindBadProtocol              = protocol.KindBadProtocol
	KindUnsupportedProtocol      = protocol.KindUnsupportedProtocol
	KindUnsupportedQueryVersion  = protocol.KindUnsupportedQueryVersion
	KindRetryableNoSQL           = protocol.KindRetryableNoSQL
	KindRetryableNetwork         = protocol.KindRetryableNetwork
	KindNonRetryableNoSQL        = protocol.KindNonRetryableNoSQL
)

// Sub-kinds, re-exported for caller-facing type switches.
const (
	SubKindNone                 = protocol.SubKindNone
	SubKindReadThrottle          = protocol.SubKindReadThrottle
	SubKindWriteThrottle         = protocol.SubKindWriteThrottle
	SubKindControlOpThrottle     = protocol.SubKindControlOpThrottle
	SubKindSecurityInfoNotReady  = protocol.SubKindSecurityInfoNotReady
	SubKindInvalidAuthorization  = protocol.SubKindInvalidAuthorization
	SubKindTableNotFound         = protocol.SubKindTableNotFound
)

// IsKind reports whether err (or something it wraps) is an Error of kind k.
func IsKind(err error, k ErrorKind) bool { return protocol.IsKind(err, k) }

// SubKindOf returns the NoSQLSubKind carried by err, or SubKindNone.
func SubKindOf(err error) NoSQLSubKind { return protocol.SubKindOf(err) }

// ErrDisposed is returned by every operation once the handle has been closed.
var ErrDisposed = protocol.ErrDisposed
