package protocol

import "sync"

// ProtocolHandler tracks the wire-protocol version and query-plan version
// currently in use by a client handle, and performs version fallback when
// the server rejects the version in use (spec §4.4).
//
// It is the one piece of shared mutable state in the core: both fields and
// the implicit "active serializer" they select are guarded by a single
// mutex. Readers take a snapshot under the lock; the fallback path takes the
// lock only for the brief decrement itself.
type ProtocolHandler struct {
	mu     sync.Mutex
	serial SerialVersion
	query  QueryVersion
}

// NewProtocolHandler returns a handler starting at the newest serial and
// query versions.
func NewProtocolHandler() *ProtocolHandler {
	return &ProtocolHandler{
		serial: SerialVersion4,
		query:  QueryVersion4,
	}
}

// Snapshot returns the currently active versions.
func (h *ProtocolHandler) Snapshot() (SerialVersion, QueryVersion) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serial, h.query
}

// HasProtocolChanged reports whether the versions captured by a request at
// the start of an attempt differ from the handler's current versions.
func (h *ProtocolHandler) HasProtocolChanged(capturedSerial SerialVersion, capturedQuery QueryVersion) bool {
	serial, query := h.Snapshot()
	return serial != capturedSerial || query != capturedQuery
}

// DecrementSerialVersion attempts to fall back from used to an older serial
// version family. It returns true if the caller should retry its request
// (either because this call performed a downgrade, or because a concurrent
// caller already did), and false if no older family remains.
func (h *ProtocolHandler) DecrementSerialVersion(used SerialVersion) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.serial != used {
		// A concurrent request already moved the handle on; the caller
		// should simply retry with the current version.
		return true
	}

	switch h.serial {
	case SerialVersion4:
		h.serial = SerialVersion3
		// Align the query version to the fallback family's maximum, per
		// spec §4.4's decrement_serial_version contract.
		h.query = QueryVersion3
		return true
	default:
		return false
	}
}

// DecrementQueryVersion attempts to fall back the query-plan version
// independently of the serial version, used when the server accepts the
// wire encoding but rejects the query-plan version.
func (h *ProtocolHandler) DecrementQueryVersion(used QueryVersion) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.query != used {
		return true
	}

	if h.query == QueryVersion4 {
		h.query = QueryVersion3
		return true
	}

	return false
}
