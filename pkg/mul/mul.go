// Package mul implements the interactive AND and arithmetic
// multiplication primitives: the one-round Beaver-style protocol that
// lets two replicated shares be combined without either party
// learning the other's input, plus their batched variants.
package mul

import (
	"context"

	"github.com/luxfi/ringshare/pkg/randomness"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
)

// AndBit computes the AND of two replicated bit shares held by this
// party: z_i = x1*y2 XOR x2*y1 XOR x1*y1 XOR r_i, for a fresh zero-share
// bit r_i, sent to the next party and combined with the prev party's
// z to form the output share. The witness (x, y, out) is appended to
// the unverified triple queue.
func AndBit(ctx context.Context, ss *session.ServerState, x, y share.BinaryShare) (share.BinaryShare, error) {
	r := ss.Randomness.RandomZeroBit()
	zi := (x.Value1 && y.Value2) != (x.Value2 && y.Value1)
	zi = zi != (x.Value1 && y.Value1)
	zi = zi != r

	tag := ss.Net.NextTag()
	reply, err := ss.Net.SendToNextRecvFromPrev(ctx, tag, boolToBytes(zi))
	if err != nil {
		return share.BinaryShare{}, err
	}
	zPrev := bytesToBool(reply)

	out := share.BinaryShare{Value1: zPrev, Value2: zi}

	ss.RecordTriple(wrapBit(x), wrapBit(y), wrapBit(out))
	return out, nil
}

// OrBit derives OR from AND and XOR: x OR y = x XOR y XOR (x AND y).
func OrBit(ctx context.Context, ss *session.ServerState, x, y share.BinaryShare) (share.BinaryShare, error) {
	and, err := AndBit(ctx, ss, x, y)
	if err != nil {
		return share.BinaryShare{}, err
	}
	return x.Xor(y).Xor(and), nil
}

// BatchAndBinaryStringShares computes the bitwise AND of two equal-
// length BinaryStringShare vectors in a single round: every bit's
// cross-term is computed locally, the whole vector of z_i bits is
// sent to the next party in one message, and the reply is the
// previous party's vector. The witness is recorded for later verify.
func BatchAndBinaryStringShares(ctx context.Context, ss *session.ServerState, x, y share.BinaryStringShare) (share.BinaryStringShare, error) {
	out, err := BatchAndNoRecord(ctx, ss.Net, ss.Randomness, x, y)
	if err != nil {
		return share.BinaryStringShare{}, err
	}
	ss.RecordTriple(x, y, out)
	return out, nil
}

// BatchAndNoRecord is the bare interactive AND round with no witness
// bookkeeping, used directly by the verify package to recompute a
// fresh sacrifice triple without polluting the very queue it is
// checking.
func BatchAndNoRecord(ctx context.Context, net *transport.Session, rnd *randomness.CommonRandomness, x, y share.BinaryStringShare) (share.BinaryStringShare, error) {
	if x.Length != y.Length {
		panic("mul: batch AND length mismatch")
	}
	n := int(x.Length)
	zi := share.NewBinaryStringShare(n)
	for i := 0; i < n; i++ {
		xb, yb := x.GetBinaryShare(i), y.GetBinaryShare(i)
		r := rnd.RandomZeroBit()
		bit := (xb.Value1 && yb.Value2) != (xb.Value2 && yb.Value1)
		bit = bit != (xb.Value1 && yb.Value1)
		bit = bit != r
		zi.SetBinaryShare(i, share.BinaryShare{Value1: false, Value2: bit})
	}

	tag := net.NextTag()
	reply, err := net.SendToNextRecvFromPrev(ctx, tag, zi.Value2)
	if err != nil {
		return share.BinaryStringShare{}, err
	}

	out := share.NewBinaryStringShare(n)
	copy(out.Value1, reply)
	copy(out.Value2, zi.Value2)
	return out, nil
}

// MulArithmetic multiplies two replicated arithmetic shares mod 2^64
// using the same Beaver-style one-round structure as AndBit, with a
// 64-bit zero-share in place of the bit zero-share.
func MulArithmetic(ctx context.Context, ss *session.ServerState, x, y share.ArithmeticShare) (share.ArithmeticShare, error) {
	out, err := MulArithmeticNoRecord(ctx, ss.Net, ss.Randomness, x, y)
	if err != nil {
		return share.ArithmeticShare{}, err
	}
	ss.RecordArithTriple(x, y, out)
	return out, nil
}

// MulArithmeticNoRecord is the bare arithmetic-multiplication round
// with no witness bookkeeping, used by the verify package's sacrifice
// check to recompute a fresh product without recursing into the
// queue it is draining.
func MulArithmeticNoRecord(ctx context.Context, net *transport.Session, rnd *randomness.CommonRandomness, x, y share.ArithmeticShare) (share.ArithmeticShare, error) {
	r := rnd.RandomZeroArithmetic()
	zi := x.Value1*y.Value2 + x.Value2*y.Value1 + x.Value1*y.Value1 + r

	tag := net.NextTag()
	reply, err := net.SendToNextRecvFromPrev(ctx, tag, uint64ToBytes(zi))
	if err != nil {
		return share.ArithmeticShare{}, err
	}
	zPrev := bytesToUint64(reply)

	return share.ArithmeticShare{Value1: zPrev, Value2: zi}, nil
}

// BatchMulArithmetic multiplies N independent pairs of arithmetic
// shares in a single round, fusing every pair's cross-term message
// into one send. Every pair is recorded as its own witness.
func BatchMulArithmetic(ctx context.Context, ss *session.ServerState, xs, ys []share.ArithmeticShare) ([]share.ArithmeticShare, error) {
	out, err := BatchMulArithmeticNoRecord(ctx, ss.Net, ss.Randomness, xs, ys)
	if err != nil {
		return nil, err
	}
	for i := range out {
		ss.RecordArithTriple(xs[i], ys[i], out[i])
	}
	return out, nil
}

// BatchMulArithmeticNoRecord is the bare batched round, used directly
// where the caller does its own witness bookkeeping or needs no
// verification at all (every lane here is a single 0/1 value, never a
// secret large enough to need sacrifice-checking on its own).
func BatchMulArithmeticNoRecord(ctx context.Context, net *transport.Session, rnd *randomness.CommonRandomness, xs, ys []share.ArithmeticShare) ([]share.ArithmeticShare, error) {
	if len(xs) != len(ys) {
		panic("mul: batch arithmetic multiply length mismatch")
	}
	n := len(xs)
	ziBuf := make([]byte, 8*n)
	zis := make([]uint64, n)
	for i := range xs {
		r := rnd.RandomZeroArithmetic()
		zi := xs[i].Value1*ys[i].Value2 + xs[i].Value2*ys[i].Value1 + xs[i].Value1*ys[i].Value1 + r
		zis[i] = zi
		copy(ziBuf[8*i:8*i+8], uint64ToBytes(zi))
	}

	tag := net.NextTag()
	reply, err := net.SendToNextRecvFromPrev(ctx, tag, ziBuf)
	if err != nil {
		return nil, err
	}

	out := make([]share.ArithmeticShare, n)
	for i := range out {
		out[i] = share.ArithmeticShare{Value1: bytesToUint64(reply[8*i : 8*i+8]), Value2: zis[i]}
	}
	return out, nil
}

func wrapBit(b share.BinaryShare) share.BinaryStringShare {
	s := share.NewBinaryStringShare(1)
	s.SetBinaryShare(0, b)
	return s
}

func boolToBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func bytesToBool(b []byte) bool {
	return len(b) > 0 && b[0]&1 != 0
}

func uint64ToBytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := range out {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
