// Package aes256circuit runs the standard Bristol-Fashion AES-256
// circuit (https://nigelsmart.github.io/MPC-Circuits/) over a
// secret-shared key and a batch of secret-shared 128-bit blocks.
package aes256circuit

import (
	"context"
	"fmt"
	"os"

	"github.com/luxfi/ringshare/pkg/blocks/circuit"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// BlockBits is the AES block size.
const BlockBits = 128

// LoadCircuit parses the AES-256 circuit file from disk, the same
// published artifact sha256circuit.LoadCircuit expects for SHA-256.
func LoadCircuit(path string) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aes256circuit: open circuit file: %w", err)
	}
	defer f.Close()

	c, err := circuit.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("aes256circuit: parse circuit file: %w", err)
	}
	return c, nil
}

// EncryptBatch runs one AES-256 block encryption per entry in blocks,
// all under the same 256-bit key, reversing bit order into and out of
// the circuit to match its wire-numbering convention. Each block is an
// independent circuit evaluation; batching here only amortizes the
// key's bit-reversal, not the interactive rounds themselves.
func EncryptBatch(ctx context.Context, ss *session.ServerState, c *circuit.Circuit, key share.BinaryStringShare, blocks []share.BinaryStringShare) ([]share.BinaryStringShare, error) {
	keyRev := reverse(key)
	out := make([]share.BinaryStringShare, len(blocks))
	for i, blk := range blocks {
		blkRev := reverse(blk)

		inputs := make([]share.BinaryShare, 0, int(keyRev.Length)+int(blkRev.Length))
		for j := 0; j < int(keyRev.Length); j++ {
			inputs = append(inputs, keyRev.GetBinaryShare(j))
		}
		for j := 0; j < int(blkRev.Length); j++ {
			inputs = append(inputs, blkRev.GetBinaryShare(j))
		}

		res, err := circuit.Eval(ctx, ss, c, inputs)
		if err != nil {
			return nil, fmt.Errorf("aes256circuit: block %d: %w", i, err)
		}

		block := share.NewBinaryStringShare(BlockBits)
		for j := 0; j < BlockBits; j++ {
			block.SetBinaryShare(j, res[j])
		}
		out[i] = reverse(block)
	}
	return out, nil
}

func reverse(s share.BinaryStringShare) share.BinaryStringShare {
	n := int(s.Length)
	out := share.NewBinaryStringShare(n)
	for i := 0; i < n; i++ {
		out.SetBinaryShare(i, s.GetBinaryShare(n-1-i))
	}
	return out
}
