package transport

import (
	"crypto/sha256"
	"encoding/binary"
)

// MsgId uniquely identifies a single message within a session: it is
// derived rather than transmitted, so every party can predict exactly
// which ids they should ask the relay to deliver.
type MsgId [32]byte

// InstanceId names a single run of the protocol across all parties,
// binding every derived MsgId to one session.
type InstanceId [32]byte

// ComputeMsgId hashes instanceID, the sender's verifying key, the
// receiver's verifying key (or nothing, for a broadcast message), and
// the tag into a single message identifier:
//
//	MsgId = SHA-256(instance_id || sender_vk || receiver_vk? || tag)
func ComputeMsgId(instanceID InstanceId, senderVK []byte, receiverVK []byte, tag MessageTag) MsgId {
	h := sha256.New()
	h.Write(instanceID[:])
	h.Write(senderVK)
	if receiverVK != nil {
		h.Write(receiverVK)
	}
	var tagBuf [8]byte
	binary.LittleEndian.PutUint64(tagBuf[:], uint64(tag))
	h.Write(tagBuf[:])
	var id MsgId
	copy(id[:], h.Sum(nil))
	return id
}
