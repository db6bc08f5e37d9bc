// Package quotient is the minimal query surface a financial-insights
// application layer composes against: given secret-shared numeric
// records, select the ones a predicate's multiplexer keeps and return
// the top-N by value. The aggregation logic itself (monthly buckets,
// category rollups, salary detection, and the rest of the concrete
// insight types) belongs to that external application, consistent
// with spec.md's scope note that the financial-insights consumer is
// the collaborator's code, not this module's.
package quotient

import (
	"context"
	"fmt"

	"github.com/luxfi/ringshare/pkg/blocks"
	"github.com/luxfi/ringshare/pkg/convert"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/protocols/sorting"
)

// Record pairs a secret-shared numeric value with a secret-shared
// inclusion flag (e.g. "this transaction is a credit"): exactly the
// (amount, type_credit) shape the reference insight queries multiplex
// over before aggregating.
type Record struct {
	Value    share.ArithmeticShare
	Included share.BinaryShare
}

// Select zeroes out every record's value whose Included flag is
// false, via a batched arithmetic-to-Boolean conversion, one batched
// multiplexer round and a batched conversion back, without revealing
// which records were excluded.
func Select(ctx context.Context, ss *session.ServerState, records []Record) ([]share.ArithmeticShare, error) {
	n := len(records)
	values := make([]share.ArithmeticShare, n)
	for i, r := range records {
		values[i] = r.Value
	}
	boolValues, err := convert.BatchArithmeticToBoolean(ctx, ss, values)
	if err != nil {
		return nil, fmt.Errorf("quotient: select convert: %w", err)
	}

	sels := share.NewBinaryStringShare(n)
	as := share.NewBinaryStringShare(0)
	for i, r := range records {
		sels.SetBinaryShare(i, r.Included)
		as.Append(boolValues[i].ToBinaryStringShare())
	}
	zero := share.NewBinaryStringShare(n * share.FieldSize)

	masked, err := blocks.BatchMux(ctx, ss, share.FieldSize, sels, as, zero)
	if err != nil {
		return nil, fmt.Errorf("quotient: select mux: %w", err)
	}

	maskedValues := make([]share.BinaryArithmeticShare, n)
	for i := range maskedValues {
		maskedValues[i] = share.FromBinaryStringShare(masked.Slice(i*share.FieldSize, (i+1)*share.FieldSize))
	}
	return convert.BatchBooleanToArithmetic(ctx, ss, maskedValues)
}

// TopN sorts values ascending and returns the last n entries (the
// largest n), e.g. the top-N credit transactions the reference
// insight query reports. values must have a power-of-two length, the
// same requirement protocols/sorting.Sort carries.
func TopN(ctx context.Context, ss *session.ServerState, values []share.ArithmeticShare, n int) ([]share.ArithmeticShare, error) {
	sorted, err := sorting.Sort(ctx, ss, values)
	if err != nil {
		return nil, fmt.Errorf("quotient: sort: %w", err)
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[len(sorted)-n:], nil
}
