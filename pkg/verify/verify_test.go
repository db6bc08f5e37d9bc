package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
	"github.com/luxfi/ringshare/pkg/verify"
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
		setups[i] = &transport.Setup{Instance: transport.InstanceId{0x02}, Self: p, VerifyingKeys: vks}
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

func TestRunClearsHonestBoolTriples(t *testing.T) {
	ss := harness(t)

	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			x := share.FromConstantBit(true, p)
			y := share.FromConstantBit(false, p)
			_, err := mul.AndBit(context.Background(), ss[i], x, y)
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.False(t, ss[0].Verified)

	g = errgroup.Group{}
	for i := range ss {
		i := i
		g.Go(func() error {
			return verify.Run(context.Background(), ss[i])
		})
	}
	require.NoError(t, g.Wait())

	for _, s := range ss {
		require.True(t, s.Verified)
		require.Equal(t, 0, s.Triples.Len())
	}
}

func TestRunClearsHonestArithTriples(t *testing.T) {
	ss := harness(t)

	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			x := share.FromConstantArithmetic(7, p)
			y := share.FromConstantArithmetic(9, p)
			_, err := mul.MulArithmetic(context.Background(), ss[i], x, y)
			return err
		})
	}
	require.NoError(t, g.Wait())

	g = errgroup.Group{}
	for i := range ss {
		i := i
		g.Go(func() error {
			return verify.Run(context.Background(), ss[i])
		})
	}
	require.NoError(t, g.Wait())

	for _, s := range ss {
		require.True(t, s.Verified)
		require.Empty(t, s.ArithTriples)
	}
}
