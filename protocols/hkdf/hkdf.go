// Package hkdf implements HKDF (RFC 5869) over secret-shared key
// material, built on protocols/hmac.
package hkdf

import (
	"context"
	"fmt"

	"github.com/luxfi/ringshare/pkg/blocks/circuit"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/protocols/hmac"
)

const hashBits = 256

// Expand derives length bits of output key material from salt and
// inputKeyMaterial (HKDF-Extract, one HMAC call), then HKDF-Expand:
// T(0) = empty, T(i) = HMAC(PRK, T(i-1) || info || counter byte i),
// output = T(1) || T(2) || ... truncated to length.
func Expand(ctx context.Context, ss *session.ServerState, c *circuit.Circuit, self party.ID, length int, salt, inputKeyMaterial, info share.BinaryStringShare) (share.BinaryStringShare, error) {
	if length > 255*hashBits {
		return share.BinaryStringShare{}, fmt.Errorf("hkdf: cannot expand to more than %d bits", 255*hashBits)
	}

	prk, err := hmac.Sum(ctx, ss, c, self, salt, inputKeyMaterial)
	if err != nil {
		return share.BinaryStringShare{}, fmt.Errorf("hkdf: extract: %w", err)
	}

	out := share.NewBinaryStringShare(0)
	t := share.NewBinaryStringShare(0)
	for blockIndex := 1; out.Length < uint64(length); blockIndex++ {
		msg := t.Clone()
		msg.Append(info)
		for i := 7; i >= 0; i-- {
			bit := (blockIndex>>uint(i))&1 == 1
			msg.PushBinaryShare(share.FromConstantBit(bit, self))
		}

		block, err := hmac.Sum(ctx, ss, c, self, prk, msg)
		if err != nil {
			return share.BinaryStringShare{}, fmt.Errorf("hkdf: expand block %d: %w", blockIndex, err)
		}
		t = block

		for i := 0; i < int(block.Length) && out.Length < uint64(length); i++ {
			out.PushBinaryShare(block.GetBinaryShare(i))
		}
	}
	return out, nil
}
