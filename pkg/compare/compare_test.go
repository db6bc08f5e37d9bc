package compare_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/compare"
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
		setups[i] = &transport.Setup{Instance: transport.InstanceId{0x04}, Self: p, VerifyingKeys: vks}
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

func openBit(bs []share.BinaryShare) bool {
	return share.OpenBit(bs[0], bs[1], bs[2])
}

func TestEqualAndGreaterEqualArithmetic(t *testing.T) {
	for _, tc := range []struct{ a, b uint64 }{
		{0, 0}, {1, 0}, {0, 1}, {42, 42}, {1000, 999}, {999, 1000}, {^uint64(0), 0}, {0, ^uint64(0)},
	} {
		ss := harness(t)
		eqOut := make([]share.BinaryShare, party.N)
		geOut := make([]share.BinaryShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantBinaryArithmetic(tc.a, p)
				y := share.FromConstantBinaryArithmetic(tc.b, p)
				eq, err := compare.EqualArithmetic(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				ge, err := compare.GreaterEqualArithmetic(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				eqOut[i], geOut[i] = eq, ge
				return nil
			})
		}
		require.NoError(t, g.Wait())

		require.Equal(t, tc.a == tc.b, openBit(eqOut), "equal(%d,%d)", tc.a, tc.b)
		require.Equal(t, tc.a >= tc.b, openBit(geOut), "ge(%d,%d)", tc.a, tc.b)
	}
}

func TestEqualAndGreaterEqualByte(t *testing.T) {
	for _, tc := range []struct{ a, b byte }{
		{0, 0}, {1, 0}, {0, 1}, {255, 255}, {200, 100}, {100, 200},
	} {
		ss := harness(t)
		eqOut := make([]share.BinaryShare, party.N)
		geOut := make([]share.BinaryShare, party.N)
		var g errgroup.Group
		for i, p := range party.AllIDs() {
			i, p := i, p
			g.Go(func() error {
				x := share.FromConstantByte(tc.a, p)
				y := share.FromConstantByte(tc.b, p)
				eq, err := compare.EqualByte(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				ge, err := compare.GreaterEqualByte(context.Background(), ss[i], x, y)
				if err != nil {
					return err
				}
				eqOut[i], geOut[i] = eq, ge
				return nil
			})
		}
		require.NoError(t, g.Wait())

		require.Equal(t, tc.a == tc.b, openBit(eqOut), "equal(%d,%d)", tc.a, tc.b)
		require.Equal(t, tc.a >= tc.b, openBit(geOut), "ge(%d,%d)", tc.a, tc.b)
	}
}

func TestBatchCompareMultipleValues(t *testing.T) {
	ss := harness(t)
	as := []uint64{5, 10, 10, 0}
	bs := []uint64{5, 3, 20, ^uint64(0)}

	eqOut := make([]share.BinaryStringShare, party.N)
	geOut := make([]share.BinaryStringShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			x := share.NewBinaryStringShare(0)
			y := share.NewBinaryStringShare(0)
			for j := range as {
				x.Append(share.FromConstantBinaryArithmetic(as[j], p).ToBinaryStringShare())
				y.Append(share.FromConstantBinaryArithmetic(bs[j], p).ToBinaryStringShare())
			}
			eq, ge, err := compare.BatchCompare(context.Background(), ss[i], share.FieldSize, x, y)
			if err != nil {
				return err
			}
			eqOut[i], geOut[i] = eq, ge
			return nil
		})
	}
	require.NoError(t, g.Wait())

	opEq := share.OpenBinaryString(eqOut[0], eqOut[1], eqOut[2])
	opGe := share.OpenBinaryString(geOut[0], geOut[1], geOut[2])
	for j := range as {
		gotEq := opEq[j/8]&(1<<uint(j%8)) != 0
		gotGe := opGe[j/8]&(1<<uint(j%8)) != 0
		require.Equal(t, as[j] == bs[j], gotEq, "equal idx %d", j)
		require.Equal(t, as[j] >= bs[j], gotGe, "ge idx %d", j)
	}
}
