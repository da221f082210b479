package simhost

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/roottap/firmware-core/internal/core"
	"github.com/roottap/firmware-core/internal/ctap2"
	"github.com/roottap/firmware-core/internal/ctap2boundary"
)

// Server exposes one authenticator Adapter over a loopback websocket.
// It frames each CTAP2 request/response pair as a single binary
// message, the same granularity the teacher's pkg/tunnel.Connection
// uses for its encrypted envelopes — this loopback server just skips
// the encryption, since its peer is a local test page or integration
// test rather than a phone across a caBLE relay.
type Server struct {
	adapter *ctap2boundary.Adapter
	rng     core.RandomSource
	gate    core.PresenceGate
}

// NewServer builds a Server around an already-initialized adapter.
func NewServer(adapter *ctap2boundary.Adapter, rng core.RandomSource, gate core.PresenceGate) *Server {
	return &Server{adapter: adapter, rng: rng, gate: gate}
}

var upgrader = websocket.Upgrader{
	Subprotocols:    []string{"ctap2.roottap"},
	ReadBufferSize:  ctap2.MaxMsgSize + 1,
	WriteBufferSize: ctap2.MaxMsgSize + 1,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades the connection and handles one CTAP2 request per
// binary websocket message until the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("simhost: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("simhost: client connected from %s", r.RemoteAddr)

	for {
		msgType, req, err := conn.ReadMessage()
		if err != nil {
			log.Printf("simhost: connection closed: %v", err)
			return
		}
		if msgType != websocket.BinaryMessage {
			log.Printf("simhost: ignoring non-binary message type %d", msgType)
			continue
		}

		resp := make([]byte, ctap2.MaxMsgSize+1)
		n, st := s.adapter.HandleRequest(req, resp, s.rng, s.gate)
		var out []byte
		if st != ctap2.StatusOK {
			out = []byte{byte(st)}
			log.Printf("simhost: request failed: %v", st)
		} else {
			out = resp[:n]
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
			log.Printf("simhost: write failed: %v", err)
			return
		}
	}
}
