package share

import "github.com/luxfi/ringshare/pkg/party"

// BinaryShare is a replicated share of a single bit in GF(2), where
// addition is XOR.
type BinaryShare struct {
	Value1 bool
	Value2 bool
}

// ZeroBit is the share of the constant false.
var ZeroBit = BinaryShare{}

// Xor returns the local XOR of two bit shares.
func (a BinaryShare) Xor(b BinaryShare) BinaryShare {
	return BinaryShare{Value1: a.Value1 != b.Value1, Value2: a.Value2 != b.Value2}
}

// Not returns the local complement. Every party flips both of its
// halves, so each of the three additive terms s_0, s_1, s_2 is flipped
// once (by both parties holding it); three flips is an odd number of
// XORs with true, so the reconstructed secret is negated exactly once
// despite each party acting unilaterally, and the result keeps the
// value1_i = value2_{i-1} layout an AND input needs.
func (a BinaryShare) Not() BinaryShare {
	return BinaryShare{Value1: !a.Value1, Value2: !a.Value2}
}

// FromConstantBit places a public bit c following the shared slot
// convention: the constant becomes the single additive term s_0, held
// by party 0 as its own share (Value1) and by party 2 as its
// successor's share (Value2, since party 2's successor is party 0);
// party 1 holds zero shares.
func FromConstantBit(c bool, p party.ID) BinaryShare {
	switch p {
	case 0:
		return BinaryShare{Value1: c, Value2: false}
	case 2:
		return BinaryShare{Value1: false, Value2: c}
	default:
		return BinaryShare{}
	}
}

// OpenBit reconstructs the secret bit from the three parties' Value2 halves.
func OpenBit(p0, p1, p2 BinaryShare) bool {
	return (p0.Value2 != p1.Value2) != p2.Value2
}
