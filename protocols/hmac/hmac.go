// Package hmac implements HMAC-SHA256 (RFC 2104) over secret-shared
// keys and messages, built on protocols/sha256circuit.
package hmac

import (
	"context"
	"fmt"

	"github.com/luxfi/ringshare/pkg/blocks/circuit"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/protocols/sha256circuit"
)

const (
	shaBlockBits = 512
	ipadByte     = 0x36
	opadByte     = 0x5c
)

// Sum computes HMAC-SHA256(key, message): resize key to one SHA-256
// block (hashing it down if it's longer, zero-padding if shorter),
// then sha256(opad_key || sha256(ipad_key || message)).
func Sum(ctx context.Context, ss *session.ServerState, c *circuit.Circuit, self party.ID, key, message share.BinaryStringShare) (share.BinaryStringShare, error) {
	resizedKey := key.Clone()
	if resizedKey.Length > shaBlockBits {
		hashed, err := sha256circuit.Sum(ctx, ss, c, self, resizedKey)
		if err != nil {
			return share.BinaryStringShare{}, fmt.Errorf("hmac: key resize hash: %w", err)
		}
		resizedKey = hashed
	}
	for resizedKey.Length < shaBlockBits {
		resizedKey.PushBinaryShare(share.ZeroBit)
	}

	iKeyPad := xorConst(resizedKey, ipadByte)
	oKeyPad := xorConst(resizedKey, opadByte)

	iKeyPad.Append(message)
	innerHash, err := sha256circuit.Sum(ctx, ss, c, self, iKeyPad)
	if err != nil {
		return share.BinaryStringShare{}, fmt.Errorf("hmac: inner hash: %w", err)
	}

	oKeyPad.Append(innerHash)
	return sha256circuit.Sum(ctx, ss, c, self, oKeyPad)
}

// xorConst XORs every byte of s with a public constant byte, flipping
// each party's own share of a bit unconditionally exactly like
// BinaryShare.Not() does for a whole-bit flip: three unilateral local
// flips net exactly one XOR of the reconstructed secret, no
// interaction required.
func xorConst(s share.BinaryStringShare, b byte) share.BinaryStringShare {
	out := s.Clone()
	for byteIdx := 0; byteIdx*8 < int(out.Length); byteIdx++ {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) == 0 {
				continue
			}
			idx := byteIdx*8 + bit
			if idx >= int(out.Length) {
				continue
			}
			out.SetBinaryShare(idx, out.GetBinaryShare(idx).Not())
		}
	}
	return out
}
