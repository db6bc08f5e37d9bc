package blocks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/blocks"
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
		setups[i] = &transport.Setup{Instance: transport.InstanceId{0x05}, Self: p, VerifyingKeys: vks}
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

func TestMux(t *testing.T) {
	for _, tc := range []struct{ sel, a, b, want bool }{
		{false, true, false, false},
		{true, true, false, true},
		{false, false, true, true},
		{true, false, true, false},
	} {
		ss := harness(t)
		out := make([]share.BinaryShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				sel := share.FromConstantBit(tc.sel, p)
				a := share.FromConstantBit(tc.a, p)
				b := share.FromConstantBit(tc.b, p)
				r, err := blocks.Mux(context.Background(), ss[i], sel, a, b)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())
		require.Equal(t, tc.want, share.OpenBit(out[0], out[1], out[2]))
	}
}

func TestSubtract(t *testing.T) {
	for _, tc := range []struct{ a, b uint64 }{
		{10, 3}, {3, 10}, {0, 0}, {^uint64(0), 1}, {1, ^uint64(0)},
	} {
		ss := harness(t)
		out := make([]share.BinaryArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantBinaryArithmetic(tc.a, p)
				y := share.FromConstantBinaryArithmetic(tc.b, p)
				r, _, err := blocks.Subtract(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())
		got := share.OpenBinaryArithmetic(out[0], out[1], out[2])
		require.Equal(t, tc.a-tc.b, got, "%d - %d", tc.a, tc.b)
	}
}

func TestDivide(t *testing.T) {
	for _, tc := range []struct{ a, b uint64 }{
		{100, 10}, {7, 2}, {1, 3}, {0, 5},
	} {
		ss := harness(t)
		out := make([]share.BinaryArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantBinaryArithmetic(tc.a, p)
				y := share.FromConstantBinaryArithmetic(tc.b, p)
				r, err := blocks.Divide(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())
		got := share.OpenBinaryArithmetic(out[0], out[1], out[2])
		want := (tc.a << blocks.FractionLength) / tc.b
		require.Equal(t, want, got, "%d / %d", tc.a, tc.b)
	}
}

func TestDivideByZero(t *testing.T) {
	for _, dividend := range []uint64{0, 1, 42, ^uint64(0)} {
		ss := harness(t)
		out := make([]share.BinaryArithmeticShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantBinaryArithmetic(dividend, p)
				y := share.FromConstantBinaryArithmetic(0, p)
				r, err := blocks.Divide(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		require.NoError(t, g.Wait())
		got := share.OpenBinaryArithmetic(out[0], out[1], out[2])
		require.Equal(t, uint64(0), got, "%d / 0", dividend)
	}
}
