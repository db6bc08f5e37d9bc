package transport

import (
	"context"

	"github.com/luxfi/ringshare/pkg/party"
)

// BroadcastBytes sends payload, signed, to every other party tagged
// tag, and returns what the two other parties sent back under the
// same tag, indexed by party.ID. Used to open a value that is safe to
// reveal to every party (a verification check result, or a masked
// sacrifice-triple difference).
func (s *Session) BroadcastBytes(ctx context.Context, tag MessageTag, payload []byte) (map[party.ID][]byte, error) {
	for _, peer := range party.AllIDs() {
		if peer == s.Setup.Self {
			continue
		}
		s.Relay.Expect(s.Setup.peerMsgID(peer, tag, nil), uint8(peer), tag)
	}

	sig := mustSign(s.Setup.Signers[s.Setup.Self], payload)
	if err := s.Relay.Send(ctx, Envelope{
		ID:        s.Setup.msgID(tag, nil),
		Tag:       tag,
		Sender:    uint8(s.Setup.Self),
		Signature: sig,
		Payload:   payload,
	}); err != nil {
		return nil, err
	}

	out := make(map[party.ID][]byte, party.N-1)
	round := NewRound(s.Relay, tag, party.N-1)
	for {
		env, peer, ok, err := round.Recv(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !s.Setup.Signers[peer].Verify(env.Payload, env.Signature) {
			return nil, newError(InvalidMessage, nil)
		}
		out[party.ID(peer)] = env.Payload
	}
	return out, nil
}
