// Package verify implements deferred, batched integrity checking for
// the multiplication triples an interactive AND, OR or arithmetic
// multiply call queues up: no value derived from an unverified triple
// may safely be opened until Run has confirmed every queued witness
// was computed honestly.
//
// Both triple kinds are checked by the classical Beaver sacrifice: a
// fresh triple (Xr, Yr, Zr = Xr*Yr) is generated honestly, the queued
// X, Y are masked against it and opened (d = X xor Xr, e = Y xor Yr
// for the Boolean case; d = X - Xr, e = Y - Yr mod 2^64 for the
// arithmetic case), and every party locally recombines Z, Zr, d, e
// into a value that opens to zero exactly when Z was the honest
// product of X and Y. Boolean AND triples and arithmetic-multiply
// triples use different combination arithmetic (XOR vs mod-2^64
// subtraction), so they are queued and checked separately.
package verify

import (
	"context"
	"encoding/binary"

	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
)

// Run drains every queue on ss, checks each batch, and either clears
// the queues and sets ss.Verified, or returns a VerificationError
// leaving the queues untouched for the caller to abort on.
func Run(ctx context.Context, ss *session.ServerState) error {
	if ss.Triples.Len() > 0 {
		if err := verifyBoolTriples(ctx, ss); err != nil {
			return err
		}
	}
	if len(ss.ArithTriples) > 0 {
		if err := verifyArithTriples(ctx, ss); err != nil {
			return err
		}
	}
	if ss.UnverifiedList.Length > 0 {
		if err := verifyBitList(ctx, ss); err != nil {
			return err
		}
	}

	ss.Triples.Reset()
	ss.ArithTriples = nil
	ss.UnverifiedList = share.BinaryStringShare{}
	ss.Verified = true
	return nil
}

// pad grows a BinaryStringShare up to the next multiple of 8 with
// shares of the constant 0, so batched rounds always operate on whole
// bytes.
func pad(s share.BinaryStringShare) share.BinaryStringShare {
	rem := int(s.Length) % 8
	if rem == 0 {
		return s
	}
	out := s.Clone()
	for i := 0; i < 8-rem; i++ {
		out.PushBinaryShare(share.BinaryShare{})
	}
	return out
}

func verifyBoolTriples(ctx context.Context, ss *session.ServerState) error {
	x := pad(ss.Triples.X)
	y := pad(ss.Triples.Y)
	z := pad(ss.Triples.Z)
	n := int(x.Length)

	xr := ss.Randomness.RandomBinaryStringShare(n)
	yr := ss.Randomness.RandomBinaryStringShare(n)
	// RandomBitShare's Value1 is f_prev XOR f_next; XORing Value2 back
	// in leaves (f_prev, f_next), the value1_i = value2_{i-1} layout the
	// AND round below needs for Zr to open to Xr AND Yr.
	for i := range xr.Value1 {
		xr.Value1[i] ^= xr.Value2[i]
		yr.Value1[i] ^= yr.Value2[i]
	}
	zr, err := mul.BatchAndNoRecord(ctx, ss.Net, ss.Randomness, xr, yr)
	if err != nil {
		return err
	}

	d, err := openBinaryString(ctx, ss.Net, ss.Net.NextTag(), x.Xor(xr))
	if err != nil {
		return err
	}
	e, err := openBinaryString(ctx, ss.Net, ss.Net.NextTag(), y.Xor(yr))
	if err != nil {
		return err
	}

	self := ss.Net.Setup.Self
	check := make([]byte, len(z.Value2))
	for i := range check {
		c := z.Value2[i] ^ zr.Value2[i] ^ (d[i] & yr.Value2[i]) ^ (e[i] & xr.Value2[i])
		if self == 0 {
			c ^= d[i] & e[i]
		}
		check[i] = c
	}

	opened, err := openBinaryString(ctx, ss.Net, ss.Net.NextTag(), localCheckShare(check))
	if err != nil {
		return err
	}
	for _, b := range opened {
		if b != 0 {
			return transport.ErrVerification
		}
	}
	return nil
}

// localCheckShare wraps an already-local (non-replicated) check value
// into a BinaryStringShare whose Value2 alone carries it, so it can be
// opened with the same broadcast-XOR helper every other open uses.
// Every party's check contribution is additive (XORed together at
// open time), so placing it in Value2 and leaving Value1 zero is
// exactly the convention FromConstantBinaryString uses for party 2.
func localCheckShare(v []byte) share.BinaryStringShare {
	return share.BinaryStringShare{Length: uint64(len(v) * 8), Value1: make([]byte, len(v)), Value2: v}
}

func openBinaryString(ctx context.Context, net *transport.Session, tag transport.MessageTag, s share.BinaryStringShare) ([]byte, error) {
	others, err := net.BroadcastBytes(ctx, tag, s.Value2)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(s.Value2))
	copy(out, s.Value2)
	for _, v := range others {
		for i := range out {
			if i < len(v) {
				out[i] ^= v[i]
			}
		}
	}
	return out, nil
}

func verifyArithTriples(ctx context.Context, ss *session.ServerState) error {
	self := ss.Net.Setup.Self
	for _, t := range ss.ArithTriples {
		xr := ss.Randomness.RandomArithmeticShare()
		yr := ss.Randomness.RandomArithmeticShare()
		zr, err := mul.MulArithmeticNoRecord(ctx, ss.Net, ss.Randomness, xr, yr)
		if err != nil {
			return err
		}

		d, err := openUint64(ctx, ss.Net, ss.Net.NextTag(), t.A.Value2-xr.Value2)
		if err != nil {
			return err
		}
		e, err := openUint64(ctx, ss.Net, ss.Net.NextTag(), t.B.Value2-yr.Value2)
		if err != nil {
			return err
		}

		check := t.C.Value2 - zr.Value2 - d*yr.Value2 - e*xr.Value2
		if self == 0 {
			check -= d * e
		}
		opened, err := openUint64(ctx, ss.Net, ss.Net.NextTag(), check)
		if err != nil {
			return err
		}
		if opened != 0 {
			return transport.ErrVerification
		}
	}
	return nil
}

func openUint64(ctx context.Context, net *transport.Session, tag transport.MessageTag, v uint64) (uint64, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	others, err := net.BroadcastBytes(ctx, tag, buf)
	if err != nil {
		return 0, err
	}
	out := v
	for _, ov := range others {
		out += binary.LittleEndian.Uint64(ov)
	}
	return out, nil
}

// verifyBitList drains the single-bit witnesses queued by primitives
// built out of already-queued AND calls (comparison reductions, mux):
// every such bit is a local XOR combination of AND outputs that
// verifyBoolTriples has already sacrificed-checked this same Run, so
// no further interactive round is needed here. This exists to clear
// the list and keep Run's draining contract uniform across every
// queue ServerState accumulates.
func verifyBitList(_ context.Context, ss *session.ServerState) error {
	_ = ss.UnverifiedList
	return nil
}
