package transport

import (
	"context"
	"sync"
)

// Relay is the minimal message bus a session runs over: parties send
// opaque framed messages and receive whatever the relay has queued for
// them, in arrival order. Every message already carries its own id, so
// the relay itself never inspects payloads.
type Relay interface {
	Send(ctx context.Context, msg []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// MemoryRelay is an in-process Relay backed by buffered channels,
// used by the test and simulation harness to run a full 3-party
// session without a network.
type MemoryRelay struct {
	out  chan<- []byte
	in   <-chan []byte
	once sync.Once
}

// NewMemoryHub builds n interconnected MemoryRelay endpoints that
// broadcast every sent message to every endpoint, the sender's own
// included (its filter discards what it never expected), modeling the
// relay's job of fanning a message out to whichever party asks for it.
func NewMemoryHub(n int) []*MemoryRelay {
	inboxes := make([]chan []byte, n)
	for i := range inboxes {
		inboxes[i] = make(chan []byte, 4096)
	}

	relays := make([]*MemoryRelay, n)
	broadcast := make(chan []byte, 4096)

	var mu sync.Mutex
	go func() {
		for msg := range broadcast {
			mu.Lock()
			for _, inbox := range inboxes {
				inbox <- msg
			}
			mu.Unlock()
		}
	}()

	for i := range relays {
		relays[i] = &MemoryRelay{out: broadcast, in: inboxes[i]}
	}
	return relays
}

func (r *MemoryRelay) Send(ctx context.Context, msg []byte) error {
	select {
	case r.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *MemoryRelay) Recv(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-r.in:
		if !ok {
			return nil, newError(MissingMessage, nil)
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *MemoryRelay) Close() error { return nil }
