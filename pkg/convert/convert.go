// Package convert implements the A→B and B→A domain-conversion
// protocols that let a value move between the arithmetic (mod 2^64)
// and Boolean share representations: a parallel-prefix adder for
// arithmetic-to-Boolean, and a per-bit re-sharing protocol for the
// reverse direction.
package convert

import (
	"context"

	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// ArithmeticToBoolean converts one replicated arithmetic share into its
// 64-bit Boolean bit-decomposition. The arithmetic secret is the sum
// of three additive terms, one per party; each party already holds
// two of the three (its own and its successor's), so every term can
// be placed into a Boolean share non-interactively via the same
// constant-injection convention FromConstantBinaryArithmetic uses
// (the party that owns a term plays "role 0", the party that also
// holds it as a successor plays "role 2", the party that knows
// neither plays "role 1" and contributes zero). The three terms are
// then summed with two chained parallel-prefix additions.
func ArithmeticToBoolean(ctx context.Context, ss *session.ServerState, x share.ArithmeticShare) (share.BinaryArithmeticShare, error) {
	out, err := BatchArithmeticToBoolean(ctx, ss, []share.ArithmeticShare{x})
	if err != nil {
		return share.BinaryArithmeticShare{}, err
	}
	return out[0], nil
}

// BatchArithmeticToBoolean converts N independent arithmetic shares in
// the same round count a single conversion takes: every per-level AND
// round operates on all N conversions' bits concatenated together.
func BatchArithmeticToBoolean(ctx context.Context, ss *session.ServerState, xs []share.ArithmeticShare) ([]share.BinaryArithmeticShare, error) {
	self := ss.Net.Setup.Self
	n := len(xs)

	terms := make([]share.BinaryStringShare, 3)
	for j := range terms {
		terms[j] = share.NewBinaryStringShare(n * share.FieldSize)
	}

	for idx, x := range xs {
		for j := 0; j < 3; j++ {
			role := (int(self) - j + 3) % 3
			var c uint64
			switch role {
			case 0:
				c = x.Value1
			case 2:
				c = x.Value2
			}
			comp := share.FromConstantBinaryArithmetic(c, party.ID(role)).ToBinaryStringShare()
			for b := 0; b < share.FieldSize; b++ {
				terms[j].SetBinaryShare(idx*share.FieldSize+b, comp.GetBinaryShare(b))
			}
		}
	}

	sum01, _, err := ppaAdd(ctx, ss, terms[0], terms[1])
	if err != nil {
		return nil, err
	}
	sum, _, err := ppaAdd(ctx, ss, sum01, terms[2])
	if err != nil {
		return nil, err
	}

	out := make([]share.BinaryArithmeticShare, n)
	for idx := range xs {
		out[idx] = share.FromBinaryStringShare(sum.Slice(idx*share.FieldSize, (idx+1)*share.FieldSize))
	}
	return out, nil
}

// ppaAdd adds two equal-length bit vectors (one or more 64-bit words
// packed back to back) with a parallel-prefix adder: p = x xor y is
// local, g = x and y costs one batched AND round, and log2(64) = 6
// further batched-AND levels propagate carries Kogge-Stone style.
// Because g and p are never both set for the same bit (x&y and x^y
// are complementary by construction), the usual generate-or-propagate
// recurrence G' = G or (P and G-shifted) collapses to a plain xor, so
// every level costs exactly one batched AND call.
func ppaAdd(ctx context.Context, ss *session.ServerState, x, y share.BinaryStringShare) (sum share.BinaryStringShare, carryOut share.BinaryStringShare, err error) {
	const width = share.FieldSize
	n := int(x.Length) / width

	pOrig := x.Xor(y)
	g, err := mul.BatchAndBinaryStringShares(ctx, ss, x, y)
	if err != nil {
		return share.BinaryStringShare{}, share.BinaryStringShare{}, err
	}
	p := pOrig.Clone()

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

	shiftedG := g.LeftShift(1)
	sum = pOrig.Xor(shiftedG)

	carryOut = share.NewBinaryStringShare(n)
	for w := 0; w < n; w++ {
		carryOut.SetBinaryShare(w, g.GetBinaryShare(w*width+width-1))
	}
	return sum, carryOut, nil
}

func bit2u64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// BooleanToArithmetic converts a 64-bit Boolean share back to an
// arithmetic share. Bit i's Boolean value is b = beta0 xor beta1 xor
// beta2, where betaK is the additive component owned by party K and
// also known by party K-1 as its successor slot. Writing the XOR of
// three bits in arithmetic form:
//
//	b = (beta0+beta1+beta2) - 2*(m0+m1+m2) + 4*triple
//
// where mK = betaK * beta(K+1) and triple = beta0*beta1*beta2. Every
// betaK is known by two parties already and injects with zero
// interaction, exactly like the constant-injection trick above. Every
// mK is known by exactly one party (its owner), so it is distributed
// with one ring exchange: owner K sends mK to party K+1 directly over
// the already-authenticated P2P channel, which both reconstructs mK's
// replicated share for every bit in one round and gives every party
// the two betaK terms its pairwise mK computation needed. triple is
// then the arithmetic product of term0 (m0, reshaped generically for
// any party) and beta2, computed with one more batched round.
func BooleanToArithmetic(ctx context.Context, ss *session.ServerState, x share.BinaryArithmeticShare) (share.ArithmeticShare, error) {
	out, err := BatchBooleanToArithmetic(ctx, ss, []share.BinaryArithmeticShare{x})
	if err != nil {
		return share.ArithmeticShare{}, err
	}
	return out[0], nil
}

// BatchBooleanToArithmetic converts N independent 64-bit Boolean
// shares, fusing every conversion's ring exchange and triple-product
// multiply into one round each regardless of N.
func BatchBooleanToArithmetic(ctx context.Context, ss *session.ServerState, xs []share.BinaryArithmeticShare) ([]share.ArithmeticShare, error) {
	self := ss.Net.Setup.Self
	bits := len(xs) * share.FieldSize

	betaOwn := make([]bool, bits)  // this party's own component
	betaSucc := make([]bool, bits) // successor's component, also known to this party
	for idx, x := range xs {
		for i := 0; i < share.FieldSize; i++ {
			b := x.GetBinaryShare(i)
			betaOwn[idx*share.FieldSize+i] = b.Value1
			betaSucc[idx*share.FieldSize+i] = b.Value2
		}
	}

	mine := make([]byte, (bits+7)/8)
	for i := 0; i < bits; i++ {
		if betaOwn[i] && betaSucc[i] {
			mine[i/8] |= 1 << uint(i%8)
		}
	}

	tag := ss.Net.NextTag()
	prevMine, err := ss.Net.SendToNextRecvFromPrev(ctx, tag, mine)
	if err != nil {
		return nil, err
	}
	getBit := func(buf []byte, i int) bool { return buf[i/8]&(1<<uint(i%8)) != 0 }

	// mSelf is the term this party owns (m_self = betaOwn*betaSucc);
	// mPrev is the term owned by the predecessor, for which this party
	// is the designated holder.
	betaArith := make([]share.ArithmeticShare, bits)
	mSum := make([]share.ArithmeticShare, bits)
	term0 := make([]share.ArithmeticShare, bits) // the m0 = beta0*beta1 term, for every party
	beta2Arith := make([]share.ArithmeticShare, bits)
	for i := 0; i < bits; i++ {
		own := share.ArithmeticShare{Value1: bit2u64(betaOwn[i]), Value2: 0}
		succ := share.ArithmeticShare{Value1: 0, Value2: bit2u64(betaSucc[i])}
		betaArith[i] = own.Add(succ)

		mSelf := share.ArithmeticShare{Value1: 0, Value2: bit2u64(getBit(mine, i))}
		mPrev := share.ArithmeticShare{Value1: bit2u64(getBit(prevMine, i)), Value2: 0}
		mSum[i] = mSelf.Add(mPrev)

		switch self {
		case 0:
			term0[i] = mSelf
		case 1:
			term0[i] = mPrev
		default:
			term0[i] = share.ArithmeticShare{}
		}

		switch self {
		case 2:
			beta2Arith[i] = share.ArithmeticShare{Value1: bit2u64(betaOwn[i]), Value2: 0}
		case 1:
			beta2Arith[i] = share.ArithmeticShare{Value1: 0, Value2: bit2u64(betaSucc[i])}
		default:
			beta2Arith[i] = share.ArithmeticShare{}
		}
	}

	triples, err := mul.BatchMulArithmeticNoRecord(ctx, ss.Net, ss.Randomness, term0, beta2Arith)
	if err != nil {
		return nil, err
	}

	bitArith := make([]share.ArithmeticShare, bits)
	for i := range bitArith {
		bitArith[i] = betaArith[i].Sub(mSum[i].MulConst(2)).Add(triples[i].MulConst(4))
	}

	out := make([]share.ArithmeticShare, len(xs))
	for idx := range xs {
		acc := share.ArithmeticShare{}
		for b := 0; b < share.FieldSize; b++ {
			acc = acc.Add(bitArith[idx*share.FieldSize+b].MulConst(1 << uint(b)))
		}
		out[idx] = acc
	}
	return out, nil
}
