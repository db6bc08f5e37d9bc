// Command relay-server is the reference WebSocket relay spec.md §6
// names: an untrusted store-and-forward service that fans every
// binary frame it receives from one connected party out to every
// other connected party, the same broadcast semantics
// pkg/transport.NewMemoryHub provides in-process for tests, over real
// network connections for a production deployment.
package main

import (
	"flag"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub fans every binary message received from one connection out to
// every other currently connected connection. It does not parse
// MsgHdr/MsgId itself; filtering by message id is each party's own
// job, exactly as pkg/transport.FilteredMsgRelay does for the
// in-memory hub.
type hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{conns: make(map[*websocket.Conn]chan []byte)}
}

func (h *hub) register(c *websocket.Conn) chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	h.conns[c] = ch
	h.mu.Unlock()
	return ch
}

func (h *hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.conns[c]; ok {
		close(ch)
		delete(h.conns, c)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(from *websocket.Conn, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c, ch := range h.conns {
		if c == from {
			continue
		}
		select {
		case ch <- msg:
		default:
			log.Printf("relay: dropping message for a slow subscriber")
		}
	}
}

func (h *hub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("relay: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := h.register(conn)
	defer h.unregister(conn)

	go func() {
		for msg := range ch {
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		h.broadcast(conn, data)
	}
}

func main() {
	addr := flag.String("addr", ":9007", "listen address")
	flag.Parse()

	h := newHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handle)

	log.Printf("relay-server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Fatal(err)
	}
}
