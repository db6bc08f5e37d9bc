package transport

import "github.com/fxamacker/cbor/v2"

// Envelope is the wire format every relay message shares: callers
// never see raw bytes, only Envelope values, with CBOR handling the
// framing the way the teacher's protocol messages are serialized.
type Envelope struct {
	ID     MsgId
	Tag    MessageTag
	Sender uint8
	// Signature is present on broadcast messages (the init handshake and
	// BroadcastBytes) and empty on P2P messages, including the
	// common-randomness key exchange, which are authenticated instead by
	// successful AEAD decryption.
	Signature []byte
	// Payload is the CBOR-encoded broadcast payload, or the raw
	// ChaCha20-Poly1305 ciphertext (nonce-prefixed) for a P2P message.
	Payload []byte
}

// Marshal encodes the envelope for sending over a Relay.
func (e Envelope) Marshal() ([]byte, error) {
	return cbor.Marshal(e)
}

// UnmarshalEnvelope decodes a message read from a Relay.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return Envelope{}, newError(InvalidMessage, err)
	}
	return e, nil
}

// EncodePayload CBOR-encodes a broadcast payload value.
func EncodePayload(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

// DecodePayload CBOR-decodes a broadcast payload into v.
func DecodePayload(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return newError(InvalidMessage, err)
	}
	return nil
}
