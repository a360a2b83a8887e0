// Package stream exposes the core's event stream over a local websocket
// endpoint so an out-of-process observer (a web frontend, a trace
// recorder) can subscribe. In-process callbacks on the Bus remain the
// primary delivery mechanism; this is a fan-out on top of them.
package stream

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/olympia-emu/olympia/internal/bus"
	"github.com/olympia-emu/olympia/internal/xlog"
)

var upgrader = websocket.Upgrader{
	// the endpoint is local-only tooling; any origin may connect
	CheckOrigin: func(*http.Request) bool { return true },
}

// wireEvent is the JSON shape each bus.Event is serialized to.
type wireEvent struct {
	Kind     string `json:"kind"`
	Addr     uint16 `json:"addr,omitempty"`
	Old      uint16 `json:"old,omitempty"`
	New      uint16 `json:"new,omitempty"`
	Register string `json:"register,omitempty"`
	PC       uint16 `json:"pc,omitempty"`
	Cycles   uint8  `json:"cycles,omitempty"`
	OldState string `json:"oldState,omitempty"`
	NewState string `json:"newState,omitempty"`
}

var kindNames = map[bus.EventKind]string{
	bus.EventMemoryWrite:        "memory-write",
	bus.EventMemoryRead:         "memory-read",
	bus.EventRegisterWrite:      "register-write",
	bus.EventInstructionRetired: "instruction-retired",
	bus.EventStateChange:        "state-change",
}

// Server broadcasts bus events to every connected websocket client. The
// emulation loop stays single-threaded; only the connection set needs a
// lock, since clients connect from http goroutines.
type Server struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// New returns a Server subscribed to the given observer registry.
func New(events *bus.Observers) *Server {
	s := &Server{conns: make(map[*websocket.Conn]bool)}
	events.Subscribe(s.broadcast)
	return s
}

// ServeHTTP upgrades the request and registers the connection. The read
// side is drained only to detect the client going away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		xlog.Warnf("stream: upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = true
	s.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// ListenAndServe serves the websocket endpoint at / on addr, blocking.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) broadcast(ev bus.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		return
	}
	msg := wireEvent{
		Kind:     kindNames[ev.Kind],
		Addr:     ev.Addr,
		Old:      ev.OldValue,
		New:      ev.NewValue,
		Register: ev.Register,
		PC:       ev.PC,
		Cycles:   ev.Cycles,
		OldState: ev.OldState,
		NewState: ev.NewState,
	}
	for conn := range s.conns {
		if err := conn.WriteJSON(msg); err != nil {
			delete(s.conns, conn)
			conn.Close()
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns[conn] {
		delete(s.conns, conn)
		conn.Close()
	}
}
