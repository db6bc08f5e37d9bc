package transport

import "context"

// SendToNextRecvFromPrev is the one-round ring exchange every
// interactive primitive (AND, arithmetic multiply, domain conversion)
// is built from: send payload to the next party on the ring tagged
// tag, and return whatever the previous party sent under the same
// tag. This is exactly the pattern the common-randomness handshake
// itself follows, generalized to arbitrary payloads.
func (s *Session) SendToNextRecvFromPrev(ctx context.Context, tag MessageTag, payload []byte) ([]byte, error) {
	next := s.Setup.Self.Next()
	prev := s.Setup.Self.Prev()

	encKey, err := EncryptionKeyFor(s.decKey, s.peerPub[next], s.Setup.VerifyingKeys[next])
	if err != nil {
		return nil, newError(SendMessage, err)
	}
	msgID := s.Setup.msgID(tag, &next)
	ciphertext, err := EncryptP2P(encKey, &s.nonces[next], msgID, payload)
	if err != nil {
		return nil, newError(SendMessage, err)
	}

	s.Relay.Expect(s.Setup.peerMsgID(prev, tag, &s.Setup.Self), uint8(prev), tag)

	if err := s.Relay.Send(ctx, Envelope{
		ID:      msgID,
		Tag:     tag,
		Sender:  uint8(s.Setup.Self),
		Payload: ciphertext,
	}); err != nil {
		return nil, err
	}

	round := NewRound(s.Relay, tag, 1)
	env, peer, ok, err := round.Recv(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || peer != uint8(prev) {
		return nil, newError(MissingMessage, nil)
	}

	decKey, err := DecryptionKeyFrom(s.decKey, s.peerPub[prev], s.Setup.VerifyingKeys[s.Setup.Self])
	if err != nil {
		return nil, newError(InvalidMessage, err)
	}
	return DecryptP2P(decKey, env.ID, env.Payload)
}

// NextTag draws the next unique message tag for this session.
func (s *Session) NextTag() MessageTag {
	return s.Tags.Next()
}
