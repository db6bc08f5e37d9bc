package transport

import (
	"fmt"

	"github.com/luxfi/ringshare/pkg/party"
)

// Error is the protocol-level error taxonomy raised by the transport
// and, through it, every interactive primitive built on top of it.
type Error struct {
	Kind ErrorKind
	Peer party.ID
	err  error
}

// ErrorKind distinguishes the circumstances under which a round can
// fail, mirroring the Rust original's ProtocolError variants.
type ErrorKind int

const (
	// InvalidMessage means a message with the expected id arrived but
	// failed to decrypt, verify, or decode.
	InvalidMessage ErrorKind = iota
	// MissingMessage means a round ended without every expected
	// message arriving.
	MissingMessage
	// SendMessage means handing a message to the relay failed.
	SendMessage
	// VerificationError means a cryptographic or integrity check
	// failed: mismatched common-randomness keys, or a failed deferred
	// triple verification.
	VerificationError
	// AbortProtocol means a peer sent an explicit abort message.
	AbortProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidMessage:
		return "invalid message"
	case MissingMessage:
		return "missing message"
	case SendMessage:
		return "send message"
	case VerificationError:
		return "verification error"
	case AbortProtocol:
		return "abort protocol"
	default:
		return "unknown error"
	}
}

func (e *Error) Error() string {
	if e.Kind == AbortProtocol {
		return fmt.Sprintf("transport: aborted by %s", e.Peer)
	}
	if e.err != nil {
		return fmt.Sprintf("transport: %s: %v", e.Kind, e.err)
	}
	return fmt.Sprintf("transport: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.err }

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, err: err}
}

// NewAbortError reports that peer sent an explicit abort message.
func NewAbortError(peer party.ID) *Error {
	return &Error{Kind: AbortProtocol, Peer: peer}
}

// ErrMissingMessage is returned when a round's recv loop exhausts the
// relay without receiving an expected message.
var ErrMissingMessage = newError(MissingMessage, nil)

// ErrVerification is returned by the common-randomness handshake when
// the two derived keys coincide, and by batched verification when a
// deferred triple check fails.
var ErrVerification = newError(VerificationError, nil)
