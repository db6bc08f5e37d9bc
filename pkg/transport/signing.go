package transport

// Signer produces a detached signature over a message body, used to
// authenticate broadcast messages (the init handshake and
// BroadcastBytes) where there is no shared encryption key to rely on.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	VerifyingKey() []byte
}

// Verifier checks a detached signature produced by the corresponding
// Signer, identified by the verifying key it was constructed with.
type Verifier interface {
	Verify(msg, sig []byte) bool
}

// NullSigner is a pluggable no-op Signer/Verifier for tests and local
// simulation where transport-level authentication is out of scope: it
// signs with the party's index as its "key" and never rejects.
type NullSigner struct {
	Index byte
}

func (n NullSigner) Sign(msg []byte) ([]byte, error) { return []byte{n.Index}, nil }
func (n NullSigner) VerifyingKey() []byte            { return []byte{n.Index} }
func (n NullSigner) Verify(msg, sig []byte) bool      { return true }
