package quotient_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
	"github.com/luxfi/ringshare/protocols/quotient"
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
		setups[i] = &transport.Setup{Instance: transport.InstanceId{0x08}, Self: p, VerifyingKeys: vks}
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

func TestSelectZeroesExcludedRecords(t *testing.T) {
	amounts := []uint64{10, 20, 30, 40}
	included := []bool{true, false, true, false}

	ss := harness(t)
	out := make([][]share.ArithmeticShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			recs := make([]quotient.Record, len(amounts))
			for j := range recs {
				recs[j] = quotient.Record{
					Value:    share.FromConstantArithmetic(amounts[j], p),
					Included: share.FromConstantBit(included[j], p),
				}
			}
			r, err := quotient.Select(context.Background(), ss[i], recs)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for j := range amounts {
		got := share.OpenArithmetic(out[0][j], out[1][j], out[2][j])
		want := uint64(0)
		if included[j] {
			want = amounts[j]
		}
		require.Equal(t, want, got, "record %d", j)
	}
}

func TestTopNReturnsLargest(t *testing.T) {
	values := []uint64{5, 50, 1, 40, 3, 2, 100, 9}

	ss := harness(t)
	out := make([][]share.ArithmeticShare, party.N)
	var g errgroup.Group
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			in := make([]share.ArithmeticShare, len(values))
			for j, v := range values {
				in[j] = share.FromConstantArithmetic(v, p)
			}
			r, err := quotient.TopN(context.Background(), ss[i], in, 2)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	require.NoError(t, g.Wait())

	got := make([]uint64, 2)
	for j := range got {
		got[j] = share.OpenArithmetic(out[0][j], out[1][j], out[2][j])
	}
	require.Equal(t, []uint64{50, 100}, got)
}
