package transport

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceCounter produces a monotonically increasing per-destination
// nonce: the low 4 bytes hold a wrapping counter, the rest stay zero.
// A fresh counter must be used per (sender, receiver) pair per
// session, since nonce reuse under a fixed key breaks ChaCha20-Poly1305.
type NonceCounter struct {
	value uint32
}

// Next returns the next nonce and advances the counter.
func (c *NonceCounter) Next() [chacha20poly1305.NonceSize]byte {
	c.value++
	var nonce [chacha20poly1305.NonceSize]byte
	binary.LittleEndian.PutUint32(nonce[:4], c.value)
	return nonce
}

// EncryptP2P seals plaintext under key using the next nonce from
// counter, with msgID as associated data so a ciphertext cannot be
// replayed under a different message identity.
func EncryptP2P(key [32]byte, counter *NonceCounter, msgID MsgId, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	nonce := counter.Next()
	return aead.Seal(nonce[:], nonce[:], plaintext, msgID[:]), nil
}

// DecryptP2P opens a ciphertext produced by EncryptP2P. The nonce is
// carried as a prefix of ciphertext, matching EncryptP2P's Seal dst.
func DecryptP2P(key [32]byte, msgID MsgId, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, newError(InvalidMessage, nil)
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	out, err := aead.Open(nil, nonce, sealed, msgID[:])
	if err != nil {
		return nil, newError(InvalidMessage, err)
	}
	return out, nil
}
