package share

import "github.com/luxfi/ringshare/pkg/party"

// FieldSize is the bit width of the arithmetic domain Z/2^64.
const FieldSize = 64

// BinaryArithmeticShare is the bit-decomposition of an ArithmeticShare:
// a length-64 Boolean share vector, bit 0 least significant. It is the
// input/output type of the comparison family and of long division.
type BinaryArithmeticShare struct {
	bits BinaryStringShare
}

// ZeroBinaryArithmetic is the share of the 64-bit constant 0.
var ZeroBinaryArithmetic = BinaryArithmeticShare{bits: NewBinaryStringShare(FieldSize)}

// NewBinaryArithmeticShare wraps a length-64 BinaryStringShare. It
// panics if the length does not match FieldSize, since every consumer
// of this type assumes a fixed 64-bit width.
func NewBinaryArithmeticShare(bits BinaryStringShare) BinaryArithmeticShare {
	if bits.Length != FieldSize {
		panic("share: BinaryArithmeticShare requires exactly 64 bits")
	}
	return BinaryArithmeticShare{bits: bits}
}

// FromConstantBinaryArithmetic places the public 64-bit value c
// following the shared slot convention.
func FromConstantBinaryArithmetic(c uint64, p party.ID) BinaryArithmeticShare {
	bits := make([]bool, FieldSize)
	for i := range bits {
		bits[i] = c&(1<<uint(i)) != 0
	}
	return BinaryArithmeticShare{bits: FromConstantBinaryString(bits, p)}
}

// ToBinaryStringShare returns the underlying variable-length share.
func (a BinaryArithmeticShare) ToBinaryStringShare() BinaryStringShare {
	return a.bits
}

// FromBinaryStringShare reinterprets a length-64 BinaryStringShare as a
// BinaryArithmeticShare.
func FromBinaryStringShare(s BinaryStringShare) BinaryArithmeticShare {
	return NewBinaryArithmeticShare(s)
}

// GetBinaryShare returns the share of bit i.
func (a BinaryArithmeticShare) GetBinaryShare(i int) BinaryShare {
	return a.bits.GetBinaryShare(i)
}

// SetBinaryShare overwrites bit i in place.
func (a *BinaryArithmeticShare) SetBinaryShare(i int, b BinaryShare) {
	a.bits.SetBinaryShare(i, b)
}

// Xor returns the local bitwise XOR.
func (a BinaryArithmeticShare) Xor(b BinaryArithmeticShare) BinaryArithmeticShare {
	return BinaryArithmeticShare{bits: a.bits.Xor(b.bits)}
}

// Not returns the local bitwise complement.
func (a BinaryArithmeticShare) Not() BinaryArithmeticShare {
	return BinaryArithmeticShare{bits: a.bits.Not()}
}

// LeftShift shifts every bit toward higher indices by n, matching the
// remainder-register shift used by long division.
func (a BinaryArithmeticShare) LeftShift(n int) BinaryArithmeticShare {
	return BinaryArithmeticShare{bits: a.bits.LeftShift(n)}
}

// Clone returns an independent copy.
func (a BinaryArithmeticShare) Clone() BinaryArithmeticShare {
	return BinaryArithmeticShare{bits: a.bits.Clone()}
}

// OpenBinaryArithmetic reconstructs the 64-bit unsigned value.
func OpenBinaryArithmetic(p0, p1, p2 BinaryArithmeticShare) uint64 {
	raw := OpenBinaryString(p0.bits, p1.bits, p2.bits)
	var v uint64
	for i := 0; i < FieldSize; i++ {
		if raw[i/8]&(1<<uint(i%8)) != 0 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// ByteShare is the bit-decomposition of a single byte: a length-8
// Boolean share vector, used by the byte-string comparison family.
type ByteShare struct {
	bits BinaryStringShare
}

// NewByteShare wraps a length-8 BinaryStringShare.
func NewByteShare(bits BinaryStringShare) ByteShare {
	if bits.Length != 8 {
		panic("share: ByteShare requires exactly 8 bits")
	}
	return ByteShare{bits: bits}
}

// FromConstantByte places the public byte c following the shared slot
// convention.
func FromConstantByte(c byte, p party.ID) ByteShare {
	bits := make([]bool, 8)
	for i := range bits {
		bits[i] = c&(1<<uint(i)) != 0
	}
	return ByteShare{bits: FromConstantBinaryString(bits, p)}
}

// ToBinaryStringShare returns the underlying variable-length share.
func (b ByteShare) ToBinaryStringShare() BinaryStringShare {
	return b.bits
}

// GetBinaryShare returns the share of bit i.
func (b ByteShare) GetBinaryShare(i int) BinaryShare {
	return b.bits.GetBinaryShare(i)
}

// Xor returns the local bitwise XOR.
func (b ByteShare) Xor(o ByteShare) ByteShare {
	return ByteShare{bits: b.bits.Xor(o.bits)}
}

// OpenByte reconstructs the byte value.
func OpenByte(p0, p1, p2 ByteShare) byte {
	raw := OpenBinaryString(p0.bits, p1.bits, p2.bits)
	return raw[0]
}
