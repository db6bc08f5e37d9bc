package randomness_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ringshare/pkg/randomness"
)

// ring builds three CommonRandomness instances sharing a PRG ring: party
// i's fNext key equals party (i+1 mod 3)'s fPrev key.
func ring(k0, k1, k2 [32]byte) (p0, p1, p2 *randomness.CommonRandomness) {
	p0 = randomness.New(k2, k0)
	p1 = randomness.New(k0, k1)
	p2 = randomness.New(k1, k2)
	return
}

func TestRandomZeroBitSumsToZero(t *testing.T) {
	p0, p1, p2 := ring([32]byte{1}, [32]byte{2}, [32]byte{3})
	for i := 0; i < 64; i++ {
		sum := p0.RandomZeroBit() != p1.RandomZeroBit()
		sum = sum != p2.RandomZeroBit()
		require.False(t, sum)
	}
}

func TestRandomZeroByteSumsToZero(t *testing.T) {
	p0, p1, p2 := ring([32]byte{4}, [32]byte{5}, [32]byte{6})
	for i := 0; i < 64; i++ {
		sum := p0.RandomZeroByte() ^ p1.RandomZeroByte() ^ p2.RandomZeroByte()
		require.Zero(t, sum)
	}
}

func TestRandomZeroArithmeticSumsToZero(t *testing.T) {
	p0, p1, p2 := ring([32]byte{7}, [32]byte{8}, [32]byte{9})
	for i := 0; i < 64; i++ {
		sum := p0.RandomZeroArithmetic() + p1.RandomZeroArithmetic() + p2.RandomZeroArithmetic()
		require.Zero(t, sum)
	}
}

func TestRandomBitShareIsConsistentAcrossRing(t *testing.T) {
	p0, p1, p2 := ring([32]byte{10}, [32]byte{11}, [32]byte{12})
	for i := 0; i < 32; i++ {
		s0 := p0.RandomBitShare()
		s1 := p1.RandomBitShare()
		s2 := p2.RandomBitShare()
		require.Equal(t, s0.Value1 != s1.Value2, s1.Value1 != s2.Value2)
		require.Equal(t, s1.Value1 != s2.Value2, s2.Value1 != s0.Value2)
	}
}

func TestRandomByteShareIsConsistentAcrossRing(t *testing.T) {
	p0, p1, p2 := ring([32]byte{13}, [32]byte{14}, [32]byte{15})
	s0 := p0.RandomByteShare()
	s1 := p1.RandomByteShare()
	s2 := p2.RandomByteShare()
	bs0, bs1, bs2 := s0.ToBinaryStringShare(), s1.ToBinaryStringShare(), s2.ToBinaryStringShare()
	for i := 0; i < 8; i++ {
		b0, b1, b2 := bs0.GetBinaryShare(i), bs1.GetBinaryShare(i), bs2.GetBinaryShare(i)
		require.Equal(t, b0.Value1 != b1.Value2, b1.Value1 != b2.Value2)
	}
}

func TestRandomBinaryStringShareLengths(t *testing.T) {
	p0, _, _ := ring([32]byte{16}, [32]byte{17}, [32]byte{18})
	s := p0.RandomBinaryStringShare(37)
	require.EqualValues(t, 37, s.Length)
	require.Len(t, s.Value1, 5)
}

func TestDifferentKeysProduceDifferentStreams(t *testing.T) {
	a := randomness.New([32]byte{1}, [32]byte{2})
	b := randomness.New([32]byte{1}, [32]byte{3})
	require.NotEqual(t, a.RandomArithmeticShare(), b.RandomArithmeticShare())
}
