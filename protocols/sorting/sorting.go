// Package sorting implements oblivious sorting over secret-shared
// 64-bit values using a bitonic network, built entirely on
// pkg/compare and pkg/blocks so no comparison result or swap decision
// is ever revealed.
package sorting

import (
	"context"
	"fmt"

	"github.com/luxfi/ringshare/pkg/blocks"
	"github.com/luxfi/ringshare/pkg/compare"
	"github.com/luxfi/ringshare/pkg/convert"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// Sort returns a new slice containing values sorted in ascending
// order, via Batcher's bitonic sorting network: len(values) must be a
// power of two. Every compare-and-swap at a given network stage is
// independent of every other pair at that stage, so each stage runs
// all of its comparisons as one batched comparison and its swaps as
// two batched multiplexer rounds, rather than one call per pair.
func Sort(ctx context.Context, ss *session.ServerState, values []share.ArithmeticShare) ([]share.ArithmeticShare, error) {
	n := len(values)
	if n == 0 {
		return nil, nil
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("sorting: length %d is not a power of two", n)
	}

	out, err := convert.BatchArithmeticToBoolean(ctx, ss, values)
	if err != nil {
		return nil, fmt.Errorf("sorting: convert to boolean: %w", err)
	}

	for k := 2; k <= n; k *= 2 {
		for j := k / 2; j > 0; j /= 2 {
			type pair struct {
				i, l      int
				ascending bool
			}
			var pairs []pair
			for i := 0; i < n; i++ {
				l := i ^ j
				if l <= i {
					continue
				}
				pairs = append(pairs, pair{i, l, (i & k) == 0})
			}

			as := share.NewBinaryStringShare(0)
			bs := share.NewBinaryStringShare(0)
			for _, pr := range pairs {
				x, y := out[pr.i], out[pr.l]
				if !pr.ascending {
					x, y = y, x
				}
				as.Append(x.ToBinaryStringShare())
				bs.Append(y.ToBinaryStringShare())
			}
			_, sels, err := compare.BatchCompare(ctx, ss, share.FieldSize, as, bs)
			if err != nil {
				return nil, fmt.Errorf("sorting: compare stage k=%d j=%d: %w", k, j, err)
			}

			lo, err := blocks.BatchMux(ctx, ss, share.FieldSize, sels, bs, as)
			if err != nil {
				return nil, fmt.Errorf("sorting: mux lo stage k=%d j=%d: %w", k, j, err)
			}
			hi, err := blocks.BatchMux(ctx, ss, share.FieldSize, sels, as, bs)
			if err != nil {
				return nil, fmt.Errorf("sorting: mux hi stage k=%d j=%d: %w", k, j, err)
			}

			for idx, pr := range pairs {
				loVal := share.FromBinaryStringShare(lo.Slice(idx*share.FieldSize, (idx+1)*share.FieldSize))
				hiVal := share.FromBinaryStringShare(hi.Slice(idx*share.FieldSize, (idx+1)*share.FieldSize))
				if pr.ascending {
					out[pr.i], out[pr.l] = loVal, hiVal
				} else {
					out[pr.i], out[pr.l] = hiVal, loVal
				}
			}
		}
	}

	return convert.BatchBooleanToArithmetic(ctx, ss, out)
}
