// Package share implements the 2-of-3 replicated share types used
// throughout the engine: arithmetic shares mod 2^64, single-bit Boolean
// shares, and their fixed- and variable-length vector forms.
//
// A secret s in a group G is split as s = s0 + s1 + s2 (addition in G).
// Party i holds the pair (s_i, s_{i+1 mod 3}); party i never holds
// s_{i-1 mod 3}. All operations defined here are local: they touch only
// the two halves a party already holds and never block on the network.
package share

import "github.com/luxfi/ringshare/pkg/party"

// ArithmeticShare is a replicated share of a value in Z/2^64. Value1 is
// the party's own additive share; Value2 is its successor's share,
// which the party also holds under the replicated scheme.
type ArithmeticShare struct {
	Value1 uint64
	Value2 uint64
}

// ArithmeticZero is the share of the constant 0.
var ArithmeticZero = ArithmeticShare{}

// Add returns the local sum of two arithmetic shares.
func (a ArithmeticShare) Add(b ArithmeticShare) ArithmeticShare {
	return ArithmeticShare{Value1: a.Value1 + b.Value1, Value2: a.Value2 + b.Value2}
}

// Sub returns the local difference a - b.
func (a ArithmeticShare) Sub(b ArithmeticShare) ArithmeticShare {
	return ArithmeticShare{Value1: a.Value1 - b.Value1, Value2: a.Value2 - b.Value2}
}

// MulConst returns the share scaled by a public constant k.
func (a ArithmeticShare) MulConst(k uint64) ArithmeticShare {
	return ArithmeticShare{Value1: a.Value1 * k, Value2: a.Value2 * k}
}

// Neg returns the local additive inverse.
func (a ArithmeticShare) Neg() ArithmeticShare {
	return ArithmeticShare{Value1: -a.Value1, Value2: -a.Value2}
}

// FromConstantArithmetic places the public constant c into the slot
// that makes the replicated share reconstruct to c, following the
// uniform convention: the constant becomes the single additive term
// s_0, held by party 0 as its own share (Value1) and by party 2 as
// its successor's share (Value2, since party 2's successor is party
// 0); party 1 holds zero shares. Every caller must use this helper
// (rather than constructing shares by hand) so all three parties
// agree on which slot carries the public value, and so it matches the
// orientation every interactively-derived share (e.g. an AND/mul
// output, see pkg/mul.AndBit) already has: value1_i = value2_{i-1}.
func FromConstantArithmetic(c uint64, p party.ID) ArithmeticShare {
	switch p {
	case 0:
		return ArithmeticShare{Value1: c, Value2: 0}
	case 2:
		return ArithmeticShare{Value1: 0, Value2: c}
	default:
		return ArithmeticShare{}
	}
}

// OpenArithmetic reconstructs the secret from the three parties' Value2 halves,
// which by the ring invariant cover s0, s1, s2 exactly once.
func OpenArithmetic(p0, p1, p2 ArithmeticShare) uint64 {
	return p0.Value2 + p1.Value2 + p2.Value2
}
