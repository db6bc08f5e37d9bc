package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ringshare/pkg/session"
	"github.com/luxfi/ringshare/pkg/share"
)

func oneBit(v bool) share.BinaryStringShare {
	s := share.NewBinaryStringShare(1)
	s.SetBinaryShare(0, share.BinaryShare{Value2: v})
	return s
}

func TestTripleQueueAppendLenReset(t *testing.T) {
	var q session.TripleQueue
	q.Append(oneBit(true), oneBit(false), oneBit(true))
	q.Append(oneBit(false), oneBit(true), oneBit(false))
	require.Equal(t, 2, q.Len())

	q.Reset()
	require.Equal(t, 0, q.Len())
}

func TestServerStateStartsVerified(t *testing.T) {
	ss := session.New(nil, nil)
	require.True(t, ss.Verified)
}

func TestRecordTripleMarksUnverified(t *testing.T) {
	ss := session.New(nil, nil)
	ss.RecordTriple(oneBit(true), oneBit(false), oneBit(true))
	require.False(t, ss.Verified)
	require.Equal(t, 1, ss.Triples.Len())
}

func TestRecordArithTripleMarksUnverified(t *testing.T) {
	ss := session.New(nil, nil)
	ss.RecordArithTriple(share.ArithmeticShare{Value2: 1}, share.ArithmeticShare{Value2: 2}, share.ArithmeticShare{Value2: 2})
	require.False(t, ss.Verified)
	require.Len(t, ss.ArithTriples, 1)
}

func TestRecordBitWitnessMarksUnverified(t *testing.T) {
	ss := session.New(nil, nil)
	ss.RecordBitWitness(share.BinaryShare{Value2: true})
	require.False(t, ss.Verified)
	require.EqualValues(t, 1, ss.UnverifiedList.Length)
}
