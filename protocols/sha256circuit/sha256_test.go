package sha256circuit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/share"
)

func TestPadProducesWholeNumberOfBlocks(t *testing.T) {
	for _, n := range []int{0, 1, 8, 55 * 8, 56 * 8, 512, 513, 1000} {
		msg := share.NewBinaryStringShare(n)
		padded := pad(0, msg)
		require.Zero(t, padded.Length%blockBits, "len %d not block-aligned for input %d bits", padded.Length, n)
		require.GreaterOrEqual(t, padded.Length, msg.Length+1+uint64(lengthBits))
	}
}

func TestReverseIsSelfInverse(t *testing.T) {
	msg := share.FromConstantBinaryString([]bool{true, false, false, true, true, false, false, true}, 0)
	require.Equal(t, msg, reverse(reverse(msg)))
}

func TestConstantChainingStateMatchesIV(t *testing.T) {
	s0 := constantChainingState(party.ID(0))
	s1 := constantChainingState(party.ID(1))
	s2 := constantChainingState(party.ID(2))
	opened := share.OpenBinaryString(s0, s1, s2)

	var words [8]uint32
	for word := 0; word < 8; word++ {
		var v uint32
		for bit := 0; bit < 32; bit++ {
			idx := word*32 + bit
			if opened[idx/8]&(1<<uint(idx%8)) != 0 {
				v |= 1 << uint(bit)
			}
		}
		words[7-word] = v
	}
	require.Equal(t, initialChainingState, words)
}
