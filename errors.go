package smpp

import (
	"fmt"

	"github.com/codcod/smpp/pdu"
)

// PDUError reports a codec or wire-structure violation encountered while
// encoding or decoding a PDU (a c-octet string overrunning its field, a
// malformed TLV, an integer out of range for its field width).
type PDUError struct {
	Op  string
	Err error
}

func (e *PDUError) Error() string { return fmt.Sprintf("smpp: pdu %s: %v", e.Op, e.Err) }
func (e *PDUError) Unwrap() error { return e.Err }

// Reasons reported by ConnectionError.
const (
	// ReasonQueueFull marks an eviction caused by the pending-request map
	// hitting max_pending_pdus; the evicted waiter loses its place so a
	// newer send can still go out.
	ReasonQueueFull = "queue full"
)

// ConnectionError reports a socket failure, a full pending-request queue,
// or an operation attempted on a connection that isn't in the state it
// needs to be.
type ConnectionError struct {
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("smpp: connection %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("smpp: connection %s", e.Reason)
}
func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports that a connect, bind, or response deadline elapsed
// before the expected event occurred.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("smpp: %s timed out", e.Op) }

// BindError reports that a bind request was rejected by the peer, or timed
// out, carrying the PDU status the peer returned (zero for a timeout).
type BindError struct {
	Status  pdu.Status
	Timeout bool
}

func (e *BindError) Error() string {
	if e.Timeout {
		return "smpp: bind timed out"
	}
	return fmt.Sprintf("smpp: bind rejected: %s", toError(e.Status))
}

// MessageError reports that submit_sm (or another message-carrying
// request) was rejected or timed out.
type MessageError struct {
	Status  pdu.Status
	Timeout bool
}

func (e *MessageError) Error() string {
	if e.Timeout {
		return "smpp: message response timed out"
	}
	return fmt.Sprintf("smpp: message rejected: %s", toError(e.Status))
}

// InvalidStateError reports an operation attempted while the session was
// in a state that doesn't permit it (e.g. submit_sm before binding). No
// bytes are sent on the wire when this error is returned.
type InvalidStateError struct {
	Op    string
	State SessionState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("smpp: %s invalid in state %s", e.Op, e.State)
}

// AuthenticationError reports that a server-side authenticator rejected a
// bind attempt's credentials. The bind response carries ESME_RBINDFAIL;
// this error is for host-side logging/metrics, not the wire.
type AuthenticationError struct {
	SystemID string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("smpp: authentication failed for system_id %q", e.SystemID)
}

// ThrottlingError reports that a request was rejected because the sender
// exceeded a configured rate limit.
type ThrottlingError struct {
	Limit int
}

func (e *ThrottlingError) Error() string {
	return fmt.Sprintf("smpp: throttled, limit %d requests", e.Limit)
}
