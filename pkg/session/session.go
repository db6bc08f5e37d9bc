// Package session holds the per-party mutable state a live protocol
// run accumulates between its init handshake and its close: the
// correlated-randomness ring, the network session, and the unverified
// multiplication-triple queue that a later verify call drains.
package session

import (
	"github.com/luxfi/ringshare/pkg/randomness"
	"github.com/luxfi/ringshare/pkg/share"
	"github.com/luxfi/ringshare/pkg/transport"
)

// TripleQueue is the append-only log of Boolean AND witnesses produced
// by every interactive AND call: X, Y, Z grow in lockstep, one bit per
// AND-ed bit position, with Z holding the (possibly dishonest) claimed
// AND. Arithmetic products are queued separately, as ArithTriple.
type TripleQueue struct {
	X, Y, Z share.BinaryStringShare
}

// Append records one more witness bit-vector triple.
func (q *TripleQueue) Append(x, y, z share.BinaryStringShare) {
	q.X.Append(x)
	q.Y.Append(y)
	q.Z.Append(z)
}

// Len returns the number of bits currently queued.
func (q *TripleQueue) Len() int { return int(q.X.Length) }

// Reset clears the queue after a successful verify.
func (q *TripleQueue) Reset() {
	*q = TripleQueue{}
}

// ArithTriple is one witness produced by an interactive arithmetic
// multiplication: C is the (possibly dishonest) claimed product of A
// and B mod 2^64. Arithmetic triples verify by re-multiplying under
// fresh randomization and opening the arithmetic difference, not by
// the XOR-diff check bitwise AND triples use, so they are queued
// separately from TripleQueue.
type ArithTriple struct {
	A, B, C share.ArithmeticShare
}

// ServerState is the state one party owns exclusively for the
// lifetime of a session: it is never shared between goroutines, and
// every primitive call borrows it mutably, matching the single
// cooperative-task scheduling model the engine assumes.
type ServerState struct {
	Randomness *randomness.CommonRandomness
	Net        *transport.Session

	// Triples holds multi-bit AND witnesses awaiting batched verification.
	Triples TripleQueue

	// ArithTriples holds arithmetic-multiplication witnesses, verified
	// separately from Triples.
	ArithTriples []ArithTriple

	// UnverifiedList holds single-bit witnesses produced by primitives
	// (e.g. comparison reductions); verify.Run drains them in
	// verifyBitList rather than through the X,Y,Z triple check.
	UnverifiedList share.BinaryStringShare

	// Verified is false whenever Triples or UnverifiedList hold
	// witnesses that have not yet passed a verify call; opening any
	// value derived from them before verify is a caller bug the spec
	// requires we not paper over.
	Verified bool
}

// New builds a fresh ServerState around an established network
// session and its seeded correlated-randomness ring.
func New(net *transport.Session, rnd *randomness.CommonRandomness) *ServerState {
	return &ServerState{Net: net, Randomness: rnd, Verified: true}
}

// RecordTriple appends a multiplication/AND witness and marks the
// state unverified until the next successful verify.
func (s *ServerState) RecordTriple(x, y, z share.BinaryStringShare) {
	s.Triples.Append(x, y, z)
	s.Verified = false
}

// RecordBitWitness appends a single-bit witness to the unverified list.
func (s *ServerState) RecordBitWitness(b share.BinaryShare) {
	s.UnverifiedList.PushBinaryShare(b)
	s.Verified = false
}

// RecordArithTriple appends an arithmetic-multiplication witness.
func (s *ServerState) RecordArithTriple(a, b, c share.ArithmeticShare) {
	s.ArithTriples = append(s.ArithTriples, ArithTriple{A: a, B: b, C: c})
	s.Verified = false
}
