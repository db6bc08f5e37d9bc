// Package blocks implements the small building-block circuits the
// higher-level protocols compose from: a secret-selected multiplexer
// and fixed-point long division.
package blocks

import (
	"context"

	"github.com/luxfi/ringshare/pkg/compare"
	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// FractionLength is the number of fractional bits Divide keeps: its
// output is a Q(64-FractionLength).FractionLength fixed-point value,
// matching the convention the rest of the arithmetic layer assumes
// whenever a division result needs to carry a fraction forward.
const FractionLength = 10

// Mux obliviously selects a or b according to a secret bit: the
// classical b xor (sel and (a xor b)) identity, costing one AND round.
func Mux(ctx context.Context, ss *session.ServerState, sel, a, b share.BinaryShare) (share.BinaryShare, error) {
	diff := a.Xor(b)
	masked, err := mul.AndBit(ctx, ss, sel, diff)
	if err != nil {
		return share.BinaryShare{}, err
	}
	return b.Xor(masked), nil
}

// BatchMux selects between n independent (a, b) pairs of the same
// width using one sel bit per pair, broadcast across its pair's width
// locally before the single batched AND round that covers all n pairs
// at once.
func BatchMux(ctx context.Context, ss *session.ServerState, width int, sels, a, b share.BinaryStringShare) (share.BinaryStringShare, error) {
	n := int(sels.Length)
	if int(a.Length) != n*width || int(b.Length) != n*width {
		panic("blocks: mux length mismatch")
	}

	diff := a.Xor(b)
	selBroadcast := share.NewBinaryStringShare(n * width)
	for i := 0; i < n; i++ {
		s := sels.GetBinaryShare(i)
		for j := 0; j < width; j++ {
			selBroadcast.SetBinaryShare(i*width+j, s)
		}
	}

	masked, err := mul.BatchAndBinaryStringShares(ctx, ss, selBroadcast, diff)
	if err != nil {
		return share.BinaryStringShare{}, err
	}
	return b.Xor(masked), nil
}

// Subtract computes the 64-bit difference x - y and its borrow-out bit
// (set when y > x), using the same Kogge-Stone borrow scan
// pkg/compare's comparison shares: g = NOT(x) AND y is the borrow
// generate term, p = XNOR(x, y) is the borrow propagate term (the two
// are complementary for the same reason they are in addition's carry
// chain), and the difference is x xor y xor the shifted borrow-in
// chain, mirroring how pkg/convert's adder derives its sum from the
// shifted carry chain.
func Subtract(ctx context.Context, ss *session.ServerState, x, y share.BinaryArithmeticShare) (share.BinaryArithmeticShare, share.BinaryShare, error) {
	xs, ys := x.ToBinaryStringShare(), y.ToBinaryStringShare()
	xorXY := xs.Xor(ys)

	g, err := mul.BatchAndBinaryStringShares(ctx, ss, xs.Not(), ys)
	if err != nil {
		return share.BinaryArithmeticShare{}, share.BinaryShare{}, err
	}
	p := xorXY.Not()

	const width = share.FieldSize
	for stride := 1; stride < width; stride *= 2 {
		segLen := width - stride
		a := share.NewBinaryStringShare(segLen)
		bG := share.NewBinaryStringShare(segLen)
		bP := share.NewBinaryStringShare(segLen)
		for i := 0; i < segLen; i++ {
			a.SetBinaryShare(i, p.GetBinaryShare(stride+i))
			bG.SetBinaryShare(i, g.GetBinaryShare(i))
			bP.SetBinaryShare(i, p.GetBinaryShare(i))
		}

		aCat := a.Clone()
		aCat.Append(a)
		bCat := bG.Clone()
		bCat.Append(bP)

		tCat, err := mul.BatchAndBinaryStringShares(ctx, ss, aCat, bCat)
		if err != nil {
			return share.BinaryArithmeticShare{}, share.BinaryShare{}, err
		}
		t1 := tCat.Slice(0, segLen)
		t2 := tCat.Slice(segLen, 2*segLen)

		newG := g.Clone()
		newP := p.Clone()
		for i := 0; i < segLen; i++ {
			idx := stride + i
			newG.SetBinaryShare(idx, newG.GetBinaryShare(idx).Xor(t1.GetBinaryShare(i)))
			newP.SetBinaryShare(idx, t2.GetBinaryShare(i))
		}
		g, p = newG, newP
	}

	borrowIn := g.LeftShift(1)
	diff := xorXY.Xor(borrowIn)
	borrowOut := g.GetBinaryShare(width - 1)
	return share.FromBinaryStringShare(diff), borrowOut, nil
}

// Divide computes a fixed-point approximation of dividend / divisor
// with FractionLength fractional bits of precision, via bit-serial
// restoring division: the remainder register is shifted in one more
// dividend (or, once the dividend is exhausted, zero) bit per step,
// compared against the divisor, conditionally restored, and the
// comparison bit itself is the next quotient bit. Each step depends on
// the previous step's remainder, so the 64+FractionLength steps cannot
// be batched across each other the way the width-wise AND rounds
// within one step are; this sequential dependency is inherent to
// restoring division, not a missed optimization.
//
// Divide assumes the true quotient fits in 64-FractionLength integer
// bits and that the remainder register itself never needs more than 64
// bits along the way (true whenever dividend and divisor are both well
// under the full 64-bit range); as with any fixed-width division, a
// computation that violates either assumption silently wraps rather
// than signaling overflow.
//
// A zero divisor is forced to a zero quotient: the predicate is
// computed once up front and applied to the result with a single Mux,
// rather than leaving the all-ones/garbage quotient restoring division
// would otherwise produce on a zero divisor for the caller to guard
// against.
func Divide(ctx context.Context, ss *session.ServerState, dividend, divisor share.BinaryArithmeticShare) (share.BinaryArithmeticShare, error) {
	const width = share.FieldSize
	remainder := share.ZeroBinaryArithmetic
	quotient := share.ZeroBinaryArithmetic

	divisorIsZero, err := compare.EqualArithmetic(ctx, ss, divisor, share.ZeroBinaryArithmetic)
	if err != nil {
		return share.BinaryArithmeticShare{}, err
	}

	steps := width + FractionLength
	for step := 0; step < steps; step++ {
		nextBit := share.BinaryShare{}
		if bitPos := width - 1 - step; bitPos >= 0 {
			nextBit = dividend.GetBinaryShare(bitPos)
		}

		shifted := remainder.LeftShift(1)
		shifted.SetBinaryShare(0, nextBit)

		ge, err := compare.GreaterEqualArithmetic(ctx, ss, shifted, divisor)
		if err != nil {
			return share.BinaryArithmeticShare{}, err
		}

		restored, _, err := Subtract(ctx, ss, shifted, divisor)
		if err != nil {
			return share.BinaryArithmeticShare{}, err
		}

		nextRemainder, err := muxArithmetic(ctx, ss, ge, restored, shifted)
		if err != nil {
			return share.BinaryArithmeticShare{}, err
		}
		remainder = nextRemainder

		shiftedQuotient := quotient.LeftShift(1)
		shiftedQuotient.SetBinaryShare(0, ge)
		quotient = shiftedQuotient
	}

	return muxArithmetic(ctx, ss, divisorIsZero, share.ZeroBinaryArithmetic, quotient)
}

func muxArithmetic(ctx context.Context, ss *session.ServerState, sel share.BinaryShare, a, b share.BinaryArithmeticShare) (share.BinaryArithmeticShare, error) {
	selVec := share.NewBinaryStringShare(1)
	selVec.SetBinaryShare(0, sel)
	out, err := BatchMux(ctx, ss, share.FieldSize, selVec, a.ToBinaryStringShare(), b.ToBinaryStringShare())
	if err != nil {
		return share.BinaryArithmeticShare{}, err
	}
	return share.FromBinaryStringShare(out), nil
}
