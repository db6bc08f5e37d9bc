// Command ringmpc-cli drives a local, in-process three-party
// simulation of the replicated-secret-sharing engine: it spins up
// three parties over an in-memory relay, runs one named primitive
// (add, mul or compare), and prints the opened result. It has no
// subcommand for running a circuit vector. It is a development
// and smoke-test tool, not a deployment target — a real deployment
// runs each party as its own process talking to relay-server.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ringshare/pkg/compare"
	"github.com/luxfi/ringshare/pkg/convert"
	"github.com/luxfi/ringshare/pkg/mul"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
	"github.com/luxfi/ringshare/pkg/verify"
)

var instanceTag byte

var rootCmd = &cobra.Command{
	Use:   "ringmpc-cli",
	Short: "Local three-party simulation driver for ringshare",
	Long:  `Runs one primitive across three in-process parties over an in-memory relay and prints the opened result.`,
}

var addCmd = &cobra.Command{
	Use:   "add A B",
	Short: "Compute A + B in the arithmetic domain",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var mulCmd = &cobra.Command{
	Use:   "mul A B",
	Short: "Compute A * B in the arithmetic domain via one interactive multiplication round",
	Args:  cobra.ExactArgs(2),
	RunE:  runMul,
}

var compareCmd = &cobra.Command{
	Use:   "compare A B",
	Short: "Report A == B and A >= B",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	rootCmd.PersistentFlags().Uint8Var(&instanceTag, "instance", 0x01, "instance tag byte distinguishing concurrent simulation runs")
	rootCmd.AddCommand(addCmd, mulCmd, compareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// harness spins up a three-party in-memory session and runs fn on
// each party's ServerState concurrently, returning the three parties'
// final-opened results via whatever fn itself chooses to compute.
func harness(ctx context.Context, fn func(ctx context.Context, ss *session.ServerState, self party.ID) error) error {
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
		setups[i] = &transport.Setup{Instance: transport.InstanceId{instanceTag}, Self: p, VerifyingKeys: vks}
		for j := range signers {
			setups[i].Signers[j] = signers[j]
		}
		relays[i] = transport.NewFilteredMsgRelay(hub[i])
	}

	var sessions [party.N]*transport.Session
	g, gctx := errgroup.WithContext(ctx)
	for i := range setups {
		i := i
		g.Go(func() error {
			s, err := transport.RunInit(gctx, setups[i], relays[i])
			if err != nil {
				return err
			}
			sessions[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	var states [party.N]*session.ServerState
	g, gctx = errgroup.WithContext(ctx)
	for i := range sessions {
		i := i
		g.Go(func() error {
			rnd, err := transport.RunCommonRandomness(gctx, sessions[i])
			if err != nil {
				return err
			}
			states[i] = session.New(sessions[i], rnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("common randomness: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	for i, p := range party.AllIDs() {
		i, p := i, p
		g.Go(func() error {
			return fn(gctx, states[i], p)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	for i := range states {
		i := i
		g.Go(func() error {
			return verify.Run(gctx, states[i])
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	b, err := parseUint64(args[1])
	if err != nil {
		return err
	}

	var out [party.N]share.ArithmeticShare
	err = harness(cmd.Context(), func(ctx context.Context, ss *session.ServerState, self party.ID) error {
		x := share.FromConstantArithmetic(a, self)
		y := share.FromConstantArithmetic(b, self)
		out[self] = x.Add(y)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println(share.OpenArithmetic(out[0], out[1], out[2]))
	return nil
}

func runMul(cmd *cobra.Command, args []string) error {
	a, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	b, err := parseUint64(args[1])
	if err != nil {
		return err
	}

	var out [party.N]share.ArithmeticShare
	err = harness(cmd.Context(), func(ctx context.Context, ss *session.ServerState, self party.ID) error {
		x := share.FromConstantArithmetic(a, self)
		y := share.FromConstantArithmetic(b, self)
		r, err := mul.MulArithmetic(ctx, ss, x, y)
		if err != nil {
			return err
		}
		out[self] = r
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println(share.OpenArithmetic(out[0], out[1], out[2]))
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := parseUint64(args[0])
	if err != nil {
		return err
	}
	b, err := parseUint64(args[1])
	if err != nil {
		return err
	}

	var eqOut, geOut [party.N]share.BinaryShare
	err = harness(cmd.Context(), func(ctx context.Context, ss *session.ServerState, self party.ID) error {
		x, err := convert.ArithmeticToBoolean(ctx, ss, share.FromConstantArithmetic(a, self))
		if err != nil {
			return err
		}
		y, err := convert.ArithmeticToBoolean(ctx, ss, share.FromConstantArithmetic(b, self))
		if err != nil {
			return err
		}
		eq, err := compare.EqualArithmetic(ctx, ss, x, y)
		if err != nil {
			return err
		}
		ge, err := compare.GreaterEqualArithmetic(ctx, ss, x, y)
		if err != nil {
			return err
		}
		eqOut[self], geOut[self] = eq, ge
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("equal=%v greater_equal=%v\n",
		share.OpenBit(eqOut[0], eqOut[1], eqOut[2]),
		share.OpenBit(geOut[0], geOut[1], geOut[2]))
	return nil
}
