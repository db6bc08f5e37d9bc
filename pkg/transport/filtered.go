package transport

import (
	"context"

	"github.com/luxfi/ringshare/pkg/party"
)

// FilteredMsgRelay wraps a Relay and sorts arriving messages by the
// MsgId a caller has told it to expect, stashing any expected message
// that arrives while a Round for a different tag is reading so a later
// Round can pick it up without losing it. A message whose id was never
// expected is discarded.
type FilteredMsgRelay struct {
	relay    Relay
	expected map[MsgId]expectation
	stash    []stashed
}

type expectation struct {
	peer uint8
	tag  MessageTag
}

type stashed struct {
	env  Envelope
	peer uint8
	tag  MessageTag
}

// NewFilteredMsgRelay wraps relay.
func NewFilteredMsgRelay(relay Relay) *FilteredMsgRelay {
	return &FilteredMsgRelay{relay: relay, expected: make(map[MsgId]expectation)}
}

// Expect marks id as an expected message associated with peer and tag.
func (f *FilteredMsgRelay) Expect(id MsgId, peer uint8, tag MessageTag) {
	f.expected[id] = expectation{peer: peer, tag: tag}
}

// Send hands an already-framed message to the underlying relay.
func (f *FilteredMsgRelay) Send(ctx context.Context, env Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return newError(SendMessage, err)
	}
	if err := f.relay.Send(ctx, data); err != nil {
		return newError(SendMessage, err)
	}
	return nil
}

// putBack reinserts a message whose id was expected but which turned
// out not to be useful yet (wrong tag for the current round), so a
// later round can still claim it.
func (f *FilteredMsgRelay) putBack(env Envelope, peer uint8, tag MessageTag) {
	f.stash = append(f.stash, stashed{env: env, peer: peer, tag: tag})
}

// recv returns the next message matching tag, pulling from the stash
// first and then reading fresh messages off the relay, filing away any
// off-tag-but-expected message it encounters along the way.
func (f *FilteredMsgRelay) recv(ctx context.Context, tag MessageTag) (Envelope, uint8, bool, error) {
	for i, s := range f.stash {
		if s.tag == tag {
			f.stash = append(f.stash[:i], f.stash[i+1:]...)
			return s.env, s.peer, false, nil
		}
	}

	for {
		raw, err := f.relay.Recv(ctx)
		if err != nil {
			return Envelope{}, 0, false, newError(MissingMessage, err)
		}
		env, err := UnmarshalEnvelope(raw)
		if err != nil {
			continue
		}
		exp, ok := f.expected[env.ID]
		if !ok {
			continue
		}
		delete(f.expected, env.ID)

		if exp.tag == AbortMessageTag {
			return env, exp.peer, true, nil
		}
		if exp.tag == tag {
			return env, exp.peer, false, nil
		}
		f.stash = append(f.stash, stashed{env: env, peer: exp.peer, tag: exp.tag})
	}
}

func (f *FilteredMsgRelay) Close() error { return f.relay.Close() }

// Round receives exactly count messages tagged tag, treating an
// explicit abort as an immediate stop.
type Round struct {
	relay *FilteredMsgRelay
	tag   MessageTag
	count int
}

// NewRound starts a round expecting count more messages tagged tag.
func NewRound(relay *FilteredMsgRelay, tag MessageTag, count int) *Round {
	return &Round{relay: relay, tag: tag, count: count}
}

// Recv returns the next message in the round, or ok=false once the
// round's count is exhausted.
func (r *Round) Recv(ctx context.Context) (env Envelope, peer uint8, ok bool, err error) {
	if r.count <= 0 {
		return Envelope{}, 0, false, nil
	}
	env, peer, isAbort, err := r.relay.recv(ctx, r.tag)
	if err != nil {
		return Envelope{}, 0, false, err
	}
	if isAbort {
		return env, peer, true, NewAbortError(party.ID(peer))
	}
	r.count--
	return env, peer, true, nil
}
