// Package netlisten implements the optional network listen mode: a
// second transport for the same one-action-per-line protocol the
// required stdin listen mode speaks, for an external HID or
// collaborator process that would rather hold a socket open than pipe
// through stdin. Grounded on the teacher's gorilla/websocket usage
// (internal/network/websocket*.go) for the connection and message-framing
// shape; the protocol itself is the dispatcher's, not a network protocol
// of its own.
package netlisten

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/dispatch"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves the action protocol over a WebSocket at a single path.
// Each connection gets its own dispatch.State (tool mode, attached
// gesture, paste buffers) but shares the one core.Context, so two
// collaborators editing the same board see each other's committed
// actions — there is no per-connection board, only per-connection
// interactive state.
type Server struct {
	Context  *core.Context
	Registry *dispatch.Registry

	mu       sync.Mutex
	sessions map[string]*websocket.Conn
}

func NewServer(c *core.Context, reg *dispatch.Registry) *Server {
	return &Server{Context: c, Registry: reg, sessions: map[string]*websocket.Conn{}}
}

// ServeHTTP upgrades the connection and runs the per-session read loop
// until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("netlisten: upgrade failed: %v", err)
		return
	}
	sessionID := uuid.NewString()

	s.mu.Lock()
	s.sessions[sessionID] = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		conn.Close()
	}()

	state := dispatch.NewState()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		argv := strings.Fields(string(message))
		if len(argv) == 0 {
			continue
		}
		result, dispatchErr := s.Registry.Dispatch(s.Context, state, argv)
		reply := result
		if dispatchErr != nil {
			reply = fmt.Sprintf("error: %v", dispatchErr)
		} else if reply == "" {
			reply = "ok"
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
	}
}

// ListenAndServe starts the HTTP server for the listen-mode socket at
// addr, serving the protocol at /pcb.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/pcb", s)
	return http.ListenAndServe(addr, mux)
}
