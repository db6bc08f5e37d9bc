package transport

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/curve25519"
)

// DecKey is an ephemeral X25519 decryption key, generated fresh per
// session during the init handshake and never reused across sessions.
type DecKey struct {
	scalar [32]byte
	pub    [32]byte
}

// NewDecKey generates a fresh ephemeral X25519 key pair.
func NewDecKey() (*DecKey, error) {
	var scalar [32]byte
	if _, err := rand.Read(scalar[:]); err != nil {
		return nil, err
	}
	var pub [32]byte
	curve25519.ScalarBaseMult(&pub, &scalar)
	return &DecKey{scalar: scalar, pub: pub}, nil
}

// PublicKey returns the key to broadcast during session setup.
func (d *DecKey) PublicKey() [32]byte { return d.pub }

// sharedSecret runs X25519 Diffie-Hellman against a peer's public key.
func (d *DecKey) sharedSecret(peerPub [32]byte) ([32]byte, error) {
	var shared [32]byte
	out, err := curve25519.X25519(d.scalar[:], peerPub[:])
	if err != nil {
		return shared, ErrLowOrderPoint
	}
	copy(shared[:], out)
	return shared, nil
}

// zeroHChaChaNonce is the all-zero 16-byte HChaCha20 nonce used to
// squeeze the X25519 shared point into a uniform 32-byte key, matching
// the teacher's own HChaCha20-based key derivation step.
var zeroHChaChaNonce [16]byte

// derivePairKey derives the symmetric key used to encrypt messages
// sent from this key's owner to the party identified by receiverVK.
// The derivation runs the shared DH point through HChaCha20 to get a
// uniform value, then binds the *receiver's* verifying key into a
// final SHA-256 so that the same DH secret yields different keys in
// each direction of a pair.
func derivePairKey(ownKey *DecKey, peerPub [32]byte, receiverVK []byte) ([32]byte, error) {
	shared, err := ownKey.sharedSecret(peerPub)
	if err != nil {
		return [32]byte{}, err
	}
	squeezed := chacha20.HChaCha20(shared[:], zeroHChaChaNonce[:])

	h := sha256.New()
	h.Write(receiverVK)
	h.Write(squeezed)
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key, nil
}

// EncryptionKeyFor derives the key this party uses to encrypt a
// message addressed to the peer holding peerPub, identified by
// peerVK (the receiver's own verifying key).
func EncryptionKeyFor(own *DecKey, peerPub [32]byte, peerVK []byte) ([32]byte, error) {
	return derivePairKey(own, peerPub, peerVK)
}

// DecryptionKeyFrom derives the key this party uses to decrypt a
// message received from the peer holding peerPub; ownVK is this
// party's own verifying key, which the sender bound into the key.
func DecryptionKeyFrom(own *DecKey, peerPub [32]byte, ownVK []byte) ([32]byte, error) {
	return derivePairKey(own, peerPub, ownVK)
}

// ErrLowOrderPoint is returned when a peer's public key produces a
// degenerate (low-order) Diffie-Hellman output.
var ErrLowOrderPoint = errors.New("transport: low-order X25519 point")
