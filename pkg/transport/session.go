// Package transport implements session establishment and the
// authenticated message channels every interactive MPC primitive
// runs over: a signed broadcast channel for session setup, and an
// encrypted, nonce-counted point-to-point channel between ring
// neighbors.
package transport

import (
	"context"
	"crypto/rand"

	"github.com/luxfi/ringshare/pkg/hash"
	"github.com/luxfi/ringshare/pkg/party"
	"github.com/luxfi/ringshare/pkg/randomness"
)

// Setup describes the fixed, session-wide facts every round needs:
// who the parties are, how to identify messages, and how to sign or
// verify the broadcast channel. It plays the role the teacher's
// ProtocolParticipant trait plays for the threshold-signing rounds.
type Setup struct {
	Instance      InstanceId
	Self          party.ID
	Signers       [party.N]verifyingSigner
	VerifyingKeys [party.N][]byte
}

// verifyingSigner is what Setup actually needs per party: something
// that can sign this party's own broadcasts and verify every party's
// broadcasts (NullSigner satisfies this trivially for tests and local
// simulation).
type verifyingSigner interface {
	Signer
	Verifier
}

// msgID derives the id of a message this party sends tagged tag,
// optionally addressed to a single receiver (nil for broadcast).
func (s *Setup) msgID(tag MessageTag, receiver *party.ID) MsgId {
	var vk []byte
	if receiver != nil {
		vk = s.VerifyingKeys[*receiver]
	}
	return ComputeMsgId(s.Instance, s.VerifyingKeys[s.Self], vk, tag)
}

// peerMsgID derives the id of a message a peer sends tagged tag,
// addressed to receiver (nil for broadcast).
func (s *Setup) peerMsgID(peer party.ID, tag MessageTag, receiver *party.ID) MsgId {
	var vk []byte
	if receiver != nil {
		vk = s.VerifyingKeys[*receiver]
	}
	return ComputeMsgId(s.Instance, s.VerifyingKeys[peer], vk, tag)
}

// Session is the live, per-run state built by RunInit: the relay, the
// agreed session id, and the per-peer encryption material every
// subsequent round's P2P messages are sealed and opened with.
type Session struct {
	Setup   *Setup
	Relay   *FilteredMsgRelay
	ID      hash.Digest
	decKey  *DecKey
	peerPub [party.N][32]byte
	nonces  [party.N]NonceCounter
	Tags    *TagOffsetCounter
}

type initPayload struct {
	Nibble [32]byte
	PubKey [32]byte
}

// RunInit executes the session-establishment handshake: every party
// broadcasts a random session-id nibble and its ephemeral X25519
// public key, tagged InitMsgTag; the final session id is the ordered
// hash of all three nibbles, and every party now has every other
// party's public key to derive pairwise encryption keys from.
func RunInit(ctx context.Context, setup *Setup, relay *FilteredMsgRelay) (*Session, error) {
	decKey, err := NewDecKey()
	if err != nil {
		return nil, newError(SendMessage, err)
	}

	var nibble [32]byte
	if _, err := rand.Read(nibble[:]); err != nil {
		return nil, newError(SendMessage, err)
	}

	payload := initPayload{Nibble: nibble, PubKey: decKey.PublicKey()}
	encoded, err := EncodePayload(payload)
	if err != nil {
		return nil, newError(SendMessage, err)
	}

	for _, peer := range party.AllIDs() {
		if peer == setup.Self {
			continue
		}
		relay.Expect(setup.peerMsgID(peer, InitMsgTag, nil), uint8(peer), InitMsgTag)
	}

	env := Envelope{
		ID:        setup.msgID(InitMsgTag, nil),
		Tag:       InitMsgTag,
		Sender:    uint8(setup.Self),
		Signature: mustSign(setup.Signers[setup.Self], encoded),
		Payload:   encoded,
	}
	if err := relay.Send(ctx, env); err != nil {
		return nil, err
	}

	nibbles := [party.N][32]byte{setup.Self: nibble}
	var peerPub [party.N][32]byte
	peerPub[setup.Self] = decKey.PublicKey()

	round := NewRound(relay, InitMsgTag, party.N-1)
	for {
		gotEnv, peer, ok, err := round.Recv(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if !setup.Signers[peer].Verify(gotEnv.Payload, gotEnv.Signature) {
			return nil, newError(InvalidMessage, nil)
		}
		var p initPayload
		if err := DecodePayload(gotEnv.Payload, &p); err != nil {
			return nil, err
		}
		nibbles[peer] = p.Nibble
		peerPub[peer] = p.PubKey
	}

	digests := make([]hash.Digest, party.N)
	for i, n := range nibbles {
		digests[i] = hash.Sum(n[:])
	}
	sessionID := hash.Combine(digests...)

	return &Session{
		Setup:   setup,
		Relay:   relay,
		ID:      sessionID,
		decKey:  decKey,
		peerPub: peerPub,
		Tags:    NewTagOffsetCounter(),
	}, nil
}

func mustSign(s Signer, msg []byte) []byte {
	sig, err := s.Sign(msg)
	if err != nil {
		return nil
	}
	return sig
}

// RunCommonRandomness executes the correlated-randomness handshake:
// each party samples a 32-byte key, sends it encrypted to the next
// party on the ring, and receives the previous party's key the same
// way. Equal keys would mean a party is replaying or colluding, so
// that case aborts with VerificationError.
func RunCommonRandomness(ctx context.Context, s *Session) (*randomness.CommonRandomness, error) {
	var keyNext [32]byte
	if _, err := rand.Read(keyNext[:]); err != nil {
		return nil, newError(SendMessage, err)
	}

	plain, err := s.SendToNextRecvFromPrev(ctx, CommonRandTag, keyNext[:])
	if err != nil {
		return nil, err
	}
	var keyPrev [32]byte
	copy(keyPrev[:], plain)

	if keyPrev == keyNext {
		return nil, ErrVerification
	}

	return randomness.New(keyPrev, keyNext), nil
}
