// Package compare implements equality and greater-equal-or-equal
// comparison over replicated Boolean shares of arbitrary bit width, so
// the same machinery serves 8-bit byte comparisons, 64-bit arithmetic
// comparisons, and the wider (e.g. 256-bit) comparisons the elliptic-
// curve modulus reduction in pkg/ecparams needs.
package compare

import (
	"context"

	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// EqualArithmetic reports whether two 64-bit arithmetic-domain values,
// given in their Boolean bit-decomposition, are equal.
func EqualArithmetic(ctx context.Context, ss *session.ServerState, x, y share.BinaryArithmeticShare) (share.BinaryShare, error) {
	eq, _, err := compareOne(ctx, ss, share.FieldSize, x.ToBinaryStringShare(), y.ToBinaryStringShare())
	return eq, err
}

// GreaterEqualArithmetic reports whether x >= y for two 64-bit
// arithmetic-domain values given in Boolean bit-decomposition.
func GreaterEqualArithmetic(ctx context.Context, ss *session.ServerState, x, y share.BinaryArithmeticShare) (share.BinaryShare, error) {
	_, ge, err := compareOne(ctx, ss, share.FieldSize, x.ToBinaryStringShare(), y.ToBinaryStringShare())
	return ge, err
}

// EqualByte reports whether two bytes given as bit-decompositions are
// equal.
func EqualByte(ctx context.Context, ss *session.ServerState, x, y share.ByteShare) (share.BinaryShare, error) {
	eq, _, err := compareOne(ctx, ss, 8, x.ToBinaryStringShare(), y.ToBinaryStringShare())
	return eq, err
}

// GreaterEqualByte reports whether x >= y for two bytes given as
// bit-decompositions.
func GreaterEqualByte(ctx context.Context, ss *session.ServerState, x, y share.ByteShare) (share.BinaryShare, error) {
	_, ge, err := compareOne(ctx, ss, 8, x.ToBinaryStringShare(), y.ToBinaryStringShare())
	return ge, err
}

// Equal reports whether two equal-length bit vectors of any width are
// equal, e.g. the 256-bit moduli pkg/ecparams works with.
func Equal(ctx context.Context, ss *session.ServerState, x, y share.BinaryStringShare) (share.BinaryShare, error) {
	eq, _, err := compareOne(ctx, ss, int(x.Length), x, y)
	return eq, err
}

// GreaterEqual reports whether x >= y for two equal-length bit vectors
// of any width.
func GreaterEqual(ctx context.Context, ss *session.ServerState, x, y share.BinaryStringShare) (share.BinaryShare, error) {
	_, ge, err := compareOne(ctx, ss, int(x.Length), x, y)
	return ge, err
}

func compareOne(ctx context.Context, ss *session.ServerState, width int, x, y share.BinaryStringShare) (share.BinaryShare, share.BinaryShare, error) {
	eqs, ges, err := BatchCompare(ctx, ss, width, x, y)
	if err != nil {
		return share.BinaryShare{}, share.BinaryShare{}, err
	}
	return eqs.GetBinaryShare(0), ges.GetBinaryShare(0), nil
}

// BatchCompare compares N independent equal-width value pairs packed
// back to back in x and y, returning one equality bit and one
// greater-equal bit per value. Both results fall out of a single
// Kogge-Stone borrow-chain scan, the subtraction analogue of the
// carry-chain scan pkg/convert's adder runs: comparison is framed as
// "does x - y borrow out of the top bit", and the scan's final
// propagate flag (all bits equal) is exactly the equality bit, so one
// scan answers both questions at the cost of the scan's usual
// ceil(log2(width)) rounds plus the one round that computes the seed
// generate term.
func BatchCompare(ctx context.Context, ss *session.ServerState, width int, x, y share.BinaryStringShare) (equal, greaterEqual share.BinaryStringShare, err error) {
	if x.Length != y.Length {
		panic("compare: length mismatch")
	}
	n := int(x.Length) / width

	// Borrow generate/propagate for x - y: a bit position borrows when
	// x is 0 and y is 1; it propagates an incoming borrow when the bits
	// are equal. g and p are complementary here exactly as they are for
	// addition's carry chain (checked by the same four-case truth
	// table), so the scan collapses the same way.
	notX := x.Not()
	g, err := mul.BatchAndBinaryStringShares(ctx, ss, notX, y)
	if err != nil {
		return share.BinaryStringShare{}, share.BinaryStringShare{}, err
	}
	p := x.Xor(y).Not()

	gFinal, pFinal, err := scanCarry(ctx, ss, n, width, g, p)
	if err != nil {
		return share.BinaryStringShare{}, share.BinaryStringShare{}, err
	}

	equal = topBits(pFinal, n, width)
	borrowOut := topBits(gFinal, n, width)
	greaterEqual = borrowOut.Not()
	return equal, greaterEqual, nil
}

// topBits extracts bit (width-1) of each of the n blocks packed in s.
func topBits(s share.BinaryStringShare, n, width int) share.BinaryStringShare {
	out := share.NewBinaryStringShare(n)
	for w := 0; w < n; w++ {
		out.SetBinaryShare(w, s.GetBinaryShare(w*width+width-1))
	}
	return out
}

// scanCarry runs the same Kogge-Stone carry-lookahead scan pkg/convert
// uses for addition, generalized to an arbitrary block width and
// arbitrary number of independent blocks n. It costs ceil(log2(width))
// batched AND rounds, every round combining all n blocks' work into
// one call.
func scanCarry(ctx context.Context, ss *session.ServerState, n, width int, g, p share.BinaryStringShare) (share.BinaryStringShare, share.BinaryStringShare, error) {
	for stride := 1; stride < width; stride *= 2 {
		segLen := width - stride
		a := share.NewBinaryStringShare(n * segLen)
		bG := share.NewBinaryStringShare(n * segLen)
		bP := share.NewBinaryStringShare(n * segLen)
		for w := 0; w < n; w++ {
			base := w * width
			for i := 0; i < segLen; i++ {
				a.SetBinaryShare(w*segLen+i, p.GetBinaryShare(base+stride+i))
				bG.SetBinaryShare(w*segLen+i, g.GetBinaryShare(base+i))
				bP.SetBinaryShare(w*segLen+i, p.GetBinaryShare(base+i))
			}
		}

		aCat := a.Clone()
		aCat.Append(a)
		bCat := bG.Clone()
		bCat.Append(bP)

		tCat, err := mul.BatchAndBinaryStringShares(ctx, ss, aCat, bCat)
		if err != nil {
			return share.BinaryStringShare{}, share.BinaryStringShare{}, err
		}
		t1 := tCat.Slice(0, n*segLen)
		t2 := tCat.Slice(n*segLen, 2*n*segLen)

		newG := g.Clone()
		newP := p.Clone()
		for w := 0; w < n; w++ {
			base := w * width
			for i := 0; i < segLen; i++ {
				idx := base + stride + i
				local := w*segLen + i
				newG.SetBinaryShare(idx, newG.GetBinaryShare(idx).Xor(t1.GetBinaryShare(local)))
				newP.SetBinaryShare(idx, t2.GetBinaryShare(local))
			}
		}
		g, p = newG, newP
	}
	return g, p, nil
}
