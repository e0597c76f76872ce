package diag

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Server upgrades HTTP connections to WebSocket and streams a Bus's
// events to every connected client as JSON, one frame per Event.
// Grounded on the teacher's internal/network WebSocketServer/
// WebSocketConn pair, generalised from a general-purpose scripting
// socket primitive into a single-purpose compiler diagnostics
// broadcaster.
type Server struct {
	bus      *Bus
	upgrader websocket.Upgrader
}

func NewServer(bus *Bus) *Server {
	return &Server{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// wireEvent is the JSON shape sent over the wire; Instruction is
// flattened to plain fields because ir.Instruction's operand accessors
// are not exported struct fields.
type wireEvent struct {
	Session string `json:"session"`
	Kind    string `json:"kind"`
	Op      string `json:"op,omitempty"`
	Op1     int    `json:"op1,omitempty"`
	Op2     int    `json:"op2,omitempty"`
	Result  int    `json:"result,omitempty"`
	Line    int    `json:"line,omitempty"`
	Error   string `json:"error,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
}

func toWire(session string, e Event) wireEvent {
	w := wireEvent{Session: session}
	switch e.Kind {
	case EventInstruction:
		w.Kind = "instruction"
		w.Op = e.Instruction.Op.String()
		w.Op1 = int(e.Instruction.Op1())
		w.Op2 = int(e.Instruction.Op2())
		w.Result = int(e.Instruction.Result)
		w.Line = e.Instruction.Loc.Line
	case EventError:
		w.Kind = "error"
		w.Error = e.Error.Error()
	case EventSummary:
		w.Kind = "summary"
		w.Summary = e.Summary
	}
	return w
}

// ServeHTTP upgrades the request and streams events for the lifetime
// of the connection or the request context, whichever ends first.
// Every connection gets its own subscription and its own supervised
// writer goroutine, torn down together via an errgroup so a write
// failure on one client can never wedge the broadcast loop for others.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("diag: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.bus.Subscribe(128)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.writeLoop(ctx, conn, events) })
	g.Go(func() error { return s.readLoop(ctx, conn, cancel) })

	if err := g.Wait(); err != nil {
		log.Printf("diag: connection closed: %v", err)
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan Event) error {
	// Closing the connection on the way out unblocks readLoop's
	// ReadMessage, so ServeHTTP returns without waiting for the client.
	defer conn.Close()
	session := s.bus.SessionID.String()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(toWire(session, e))
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		}
	}
}

// readLoop only exists to notice the client going away (gorilla
// requires reads to happen for close frames/pings to be processed);
// this server never accepts client-sent messages.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) error {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}
