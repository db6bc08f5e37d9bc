package transport

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketRelay is a Relay backed by a single websocket connection to
// a relay-server instance (see cmd/relay-server): every message sent
// here is framed as one binary websocket message, and incoming
// messages are whatever the server forwards to this connection.
type WebSocketRelay struct {
	conn *websocket.Conn
}

var dialer = websocket.Dialer{}

// DialWebSocketRelay connects to a relay server at url, sending header
// with the websocket upgrade request.
func DialWebSocketRelay(ctx context.Context, url string, header http.Header) (*WebSocketRelay, error) {
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return &WebSocketRelay{conn: conn}, nil
}

func (r *WebSocketRelay) Send(ctx context.Context, msg []byte) error {
	return r.conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (r *WebSocketRelay) Recv(ctx context.Context) ([]byte, error) {
	_, data, err := r.conn.ReadMessage()
	if err != nil {
		return nil, newError(MissingMessage, err)
	}
	return data, nil
}

func (r *WebSocketRelay) Close() error {
	return r.conn.Close()
}
