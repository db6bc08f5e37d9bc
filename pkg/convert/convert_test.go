package convert_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/convert"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
)

func harness(t *testing.T) [party.N]*session.ServerState {
	t.Helper()

	var signers [party.N]transport.NullSigner
	var vks [party.N][]byte
	for i := range signers {
		signers[i] = transport.NullSigner{Index: byte(i)}
		vks[i] = signers[i].VerifyingKey()
	}

	hub := transport.NewMemoryHub(party.N)
	var setups [party.N]*transport.Setup
	var relays [party.N]*transport.FilteredMsgRelay
	for i, p := range party.AllIDs() {
		setups[i] = &transport.Setup{Instance: transport.InstanceId{0x03}, Self: p, VerifyingKeys: vks}
		for j := range signers {
			setups[i].Signers[j] = signers[j]
		}
		relays[i] = transport.NewFilteredMsgRelay(hub[i])
	}

	var sessions [party.N]*transport.Session
	var g errgroup.Group
	for i := range setups {
		i := i
		g.Go(func() error {
			s, err := transport.RunInit(context.Background(), setups[i], relays[i])
			if err != nil {
				return err
			}
			sessions[i] = s
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var states [party.N]*session.ServerState
	g = errgroup.Group{}
	for i := range sessions {
		i := i
		g.Go(func() error {
			rnd, err := transport.RunCommonRandomness(context.Background(), sessions[i])
			if err != nil {
				return err
			}
			states[i] = session.New(sessions[i], rnd)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	return states
}

func TestArithmeticToBoolean(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 42, 1 << 32, ^uint64(0), 0xdeadbeef} {
		ss := harness(t)
		out := make([]share.BinaryArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantArithmetic(v, p)
				r, err := convert.ArithmeticToBoolean(context.Background(), ss[i], x)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())

		opened := share.OpenBinaryString(out[0].ToBinaryStringShare(), out[1].ToBinaryStringShare(), out[2].ToBinaryStringShare())
		var got uint64
		for i := 0; i < share.FieldSize; i++ {
			if opened[i/8]&(1<<uint(i%8)) != 0 {
				got |= 1 << uint(i)
			}
		}
		require.Equal(t, v, got, "value %d", v)
	}
}

func TestBooleanToArithmetic(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 42, 1 << 32, ^uint64(0), 0xdeadbeef} {
		ss := harness(t)
		bits := make([]bool, share.FieldSize)
		for i := range bits {
			bits[i] = v&(1<<uint(i)) != 0
		}

		out := make([]share.ArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromBinaryStringShare(share.FromConstantBinaryString(bits, p))
				r, err := convert.BooleanToArithmetic(context.Background(), ss[i], x)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())

		require.Equal(t, v, share.OpenArithmetic(out[0], out[1], out[2]), "value %d", v)
	}
}

func TestRoundTripArithmeticBooleanArithmetic(t *testing.T) {
	for _, v := range []uint64{0, 7, 1000000, ^uint64(0), 1 << 63} {
		ss := harness(t)
		out := make([]share.ArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantArithmetic(v, p)
				b, err := convert.ArithmeticToBoolean(context.Background(), ss[i], x)
				if err != nil {
					return err
				}
				r, err := convert.BooleanToArithmetic(context.Background(), ss[i], b)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())

		require.Equal(t, v, share.OpenArithmetic(out[0], out[1], out[2]), "value %d", v)
	}
}

// arithmeticSharesFromTerms builds a genuine three-party replicated
// share from three additive terms t[0]+t[1]+t[2] (mod 2^64), one term
// owned by each party: party i's Value1 is its own term t[i], and
// party i's Value2 is the term owned by its successor, t[i+1 mod 3] —
// the same slot convention share.FromConstantArithmetic now uses.
// Unlike FromConstantArithmetic, which only ever sets one term and
// leaves the other two identically zero, this can produce two
// genuinely nonzero operands on both sides of an addition, which is
// required to exercise ppaAdd's carry-propagation scan at all: XOR-ing
// or ANDing any value against an all-zero operand never activates a
// carry.
func arithmeticSharesFromTerms(t [3]uint64) [party.N]share.ArithmeticShare {
	var out [party.N]share.ArithmeticShare
	for i := 0; i < party.N; i++ {
		succ := (i + 1) % party.N
		out[i] = share.ArithmeticShare{Value1: t[i], Value2: t[succ]}
	}
	return out
}

// TestArithmeticToBooleanFullCarryChain adds 0xFFFFFFFFFFFFFFFF and 1
// as two distinct, genuinely nonzero replicated terms: their sum
// overflows mod 2^64 to 0, which only happens if a carry ripples out
// of every one of the 64 bit positions in ppaAdd's scan. A regression
// that mixes up which operand orientation BatchArithmeticToBoolean's
// internal AND rounds expect would reconstruct a nonzero, wrong value
// here, even though it can pass with a single-term FromConstant input.
func TestArithmeticToBooleanFullCarryChain(t *testing.T) {
	shares := arithmeticSharesFromTerms([3]uint64{^uint64(0), 1, 0})

	ss := harness(t)
	out := make([]share.BinaryArithmeticShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			r, err := convert.ArithmeticToBoolean(context.Background(), ss[i], shares[p])
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got := share.OpenBinaryArithmetic(out[0], out[1], out[2])
	require.Equal(t, uint64(0), got)
}

// TestRoundTripFullCarryChain runs the same overflowing addition
// through ArithmeticToBoolean and back through BooleanToArithmetic,
// checking the round trip preserves the wrapped-to-zero result rather
// than silently reconstructing one of the un-added input terms.
func TestRoundTripFullCarryChain(t *testing.T) {
	shares := arithmeticSharesFromTerms([3]uint64{^uint64(0), 1, 0})

	ss := harness(t)
	out := make([]share.ArithmeticShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			b, err := convert.ArithmeticToBoolean(context.Background(), ss[i], shares[p])
			if err != nil {
				return err
			}
			r, err := convert.BooleanToArithmetic(context.Background(), ss[i], b)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, uint64(0), share.OpenArithmetic(out[0], out[1], out[2]))
}

func TestBatchArithmeticToBoolean(t *testing.T) {
	ss := harness(t)
	vs := []uint64{0, 1, 99, ^uint64(0)}

	out := make([][]share.BinaryArithmeticShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			xs := make([]share.ArithmeticShare, len(vs))
			for j, v := range vs {
				xs[j] = share.FromConstantArithmetic(v, p)
			}
			r, err := convert.BatchArithmeticToBoolean(context.Background(), ss[i], xs)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for j, v := range vs {
		opened := share.OpenBinaryString(out[0][j].ToBinaryStringShare(), out[1][j].ToBinaryStringShare(), out[2][j].ToBinaryStringShare())
		var got uint64
		for i := 0; i < share.FieldSize; i++ {
			if opened[i/8]&(1<<uint(i%8)) != 0 {
				got |= 1 << uint(i)
			}
		}
		require.Equal(t, v, got, "value %d", v)
	}
}
