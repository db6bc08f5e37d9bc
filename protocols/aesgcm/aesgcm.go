// Package aesgcm implements AES-256-GCM-mode encryption under a
// secret-shared key, per NIST SP 800-38D's counter-mode construction.
//
// This is explicitly a partial implementation: it produces ciphertext
// via CTR-mode AES block encryption but does not compute a GHASH
// authentication tag, matching the open question spec.md's Design
// Notes section leaves unresolved for this module. Callers needing
// authenticated encryption must add their own integrity check; Encrypt
// returns ciphertext only, never a tag.
package aesgcm

import (
	"context"
	"fmt"

	"github.com/luxfi/ringshare/pkg/blocks/circuit"
	"github.com/luxfi/ringshare/protocols/aes256circuit"
	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

// Encrypt produces the CTR-mode keystream XOR plaintext ciphertext for
// msg under key (a 256-bit secret-shared AES key) and iv (a 96-bit
// secret-shared nonce, the standard GCM IV length). It does not
// authenticate the result; see the package doc comment.
func Encrypt(ctx context.Context, ss *session.ServerState, c *circuit.Circuit, key, iv share.BinaryStringShare, msg []byte) (share.BinaryStringShare, error) {
	if iv.Length != 96 {
		return share.BinaryStringShare{}, fmt.Errorf("aesgcm: iv must be 96 bits, got %d", iv.Length)
	}

	numBlocks := (len(msg)*8 + aes256circuit.BlockBits - 1) / aes256circuit.BlockBits

	counterBlocks := make([]share.BinaryStringShare, numBlocks)
	for i := range counterBlocks {
		block := share.NewBinaryStringShare(aes256circuit.BlockBits)
		for j := 0; j < 96; j++ {
			block.SetBinaryShare(j, iv.GetBinaryShare(j))
		}
		counter := uint32(i + 2)
		for j := 0; j < 32; j++ {
			bit := (counter>>uint(j))&1 == 1
			block.SetBinaryShare(96+31-j, share.FromConstantBit(bit, ss.Net.Setup.Self))
		}
		counterBlocks[i] = block
	}

	keystream, err := aes256circuit.EncryptBatch(ctx, ss, c, key, counterBlocks)
	if err != nil {
		return share.BinaryStringShare{}, fmt.Errorf("aesgcm: keystream generation: %w", err)
	}

	msgBits := bytesToBits(msg)
	out := share.NewBinaryStringShare(0)
	for i, ks := range keystream {
		for j := 0; j < aes256circuit.BlockBits; j++ {
			idx := i*aes256circuit.BlockBits + j
			if idx >= len(msgBits) {
				break
			}
			b := ks.GetBinaryShare(j)
			b.Value2 = b.Value2 != msgBits[idx]
			out.PushBinaryShare(b)
		}
	}
	return out, nil
}

func bytesToBits(b []byte) []bool {
	bits := make([]bool, len(b)*8)
	for i, by := range b {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (by>>uint(j))&1 == 1
		}
	}
	return bits
}
