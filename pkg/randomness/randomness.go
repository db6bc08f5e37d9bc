// Package randomness implements the correlated-randomness subsystem: each
// party holds a pair of seeded stream ciphers shared with its ring
// neighbors, and derives zero-shares and random-bit shares from them
// without any further interaction.
package randomness

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"github.com/luxfi/ringshare/pkg/share"
)

// zeroNonce is fixed because the key itself is freshly derived per
// session by the common-randomness handshake; reusing a nonce under a
// one-time key is safe and lets the two streams be plain deterministic
// PRGs rather than a rekeyed AEAD construction.
var zeroNonce = [chacha20.NonceSize]byte{}

// stream wraps a keyed ChaCha20 instance as an infinite byte generator.
type stream struct {
	cipher *chacha20.Cipher
}

func newStream(key [32]byte) stream {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], zeroNonce[:])
	if err != nil {
		// Only fails on malformed key/nonce lengths, which are fixed
		// constants here.
		panic(err)
	}
	return stream{cipher: c}
}

func (s stream) bytes(n int) []byte {
	out := make([]byte, n)
	s.cipher.XORKeyStream(out, out)
	return out
}

func (s stream) bit() bool {
	return s.bytes(1)[0]&1 != 0
}

func (s stream) byte() byte {
	return s.bytes(1)[0]
}

func (s stream) uint64() uint64 {
	return binary.LittleEndian.Uint64(s.bytes(8))
}

// CommonRandomness holds the two correlated PRGs a party uses to derive
// zero-shares and random shares without interaction: fPrev is seeded
// from the key shared with the previous party on the ring, fNext from
// the key shared with the next. Invariant: party i's fNext stream is
// bit-for-bit identical to party (i+1 mod 3)'s fPrev stream.
type CommonRandomness struct {
	fPrev stream
	fNext stream
}

// New builds a CommonRandomness from the two session keys established
// by the common_randomness handshake (see protocols' transport setup).
func New(keyPrev, keyNext [32]byte) *CommonRandomness {
	return &CommonRandomness{fPrev: newStream(keyPrev), fNext: newStream(keyNext)}
}

// RandomZeroBit returns a bit that XORs to 0 across the three parties:
// f_next XOR f_prev. Used to re-randomize bit shares without opening them.
func (c *CommonRandomness) RandomZeroBit() bool {
	return c.fNext.bit() != c.fPrev.bit()
}

// RandomBitShare returns [f_prev XOR f_next, f_next] for a fresh,
// uniformly random, otherwise-unknown bit: the three parties' Value2
// halves XOR to that bit. Value1 is not in the value1_i = value2_{i-1}
// layout pkg/share and pkg/mul use; that layout's pair for the same bit
// is (Value1 XOR Value2, Value2) = (f_prev, f_next).
func (c *CommonRandomness) RandomBitShare() share.BinaryShare {
	a, b := c.fPrev.bit(), c.fNext.bit()
	return share.BinaryShare{Value1: a != b, Value2: b}
}

// RandomZeroByte is RandomZeroBit generalized to a full byte.
func (c *CommonRandomness) RandomZeroByte() byte {
	return c.fNext.byte() ^ c.fPrev.byte()
}

// RandomByteShare is RandomBitShare generalized to a full byte.
func (c *CommonRandomness) RandomByteShare() share.ByteShare {
	a, b := c.fPrev.byte(), c.fNext.byte()
	bs := share.NewBinaryStringShare(8)
	for i := 0; i < 8; i++ {
		bs.SetBinaryShare(i, share.BinaryShare{
			Value1: (a^b)&(1<<uint(i)) != 0,
			Value2: b&(1<<uint(i)) != 0,
		})
	}
	return share.NewByteShare(bs)
}

// RandomZeroArithmetic returns a 64-bit value that sums to 0 mod 2^64
// across the three parties: the arithmetic analogue of RandomZeroBit,
// used to re-randomize arithmetic shares produced by an interactive AND.
func (c *CommonRandomness) RandomZeroArithmetic() uint64 {
	return c.fNext.uint64() - c.fPrev.uint64()
}

// RandomArithmeticShare returns a valid ArithmeticShare of a fresh,
// uniformly random value mod 2^64.
func (c *CommonRandomness) RandomArithmeticShare() share.ArithmeticShare {
	a, b := c.fPrev.uint64(), c.fNext.uint64()
	return share.ArithmeticShare{Value1: a, Value2: b}
}

// Random8Bytes returns the next 8 bytes from each stream as a (prev,
// next) pair, without combining them — callers needing a raw
// correlated seed (rather than a share) use this directly.
func (c *CommonRandomness) Random8Bytes() (prev, next [8]byte) {
	copy(prev[:], c.fPrev.bytes(8))
	copy(next[:], c.fNext.bytes(8))
	return
}

// Random32Bytes is Random8Bytes at 32-byte width, used to derive fresh
// session or sub-protocol keys from existing correlated randomness.
func (c *CommonRandomness) Random32Bytes() (prev, next [32]byte) {
	copy(prev[:], c.fPrev.bytes(32))
	copy(next[:], c.fNext.bytes(32))
	return
}

// RandomBinaryStringShare returns a share.BinaryStringShare of the
// given bit length, drawn bit-share by bit-share from RandomBitShare.
func (c *CommonRandomness) RandomBinaryStringShare(length int) share.BinaryStringShare {
	out := share.NewBinaryStringShare(length)
	for i := 0; i < length; i++ {
		out.SetBinaryShare(i, c.RandomBitShare())
	}
	return out
}
