package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin enforcement is handled by the CORS layer; the socket
	// carries no credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is one incoming editing operation.
type clientFrame struct {
	Op          string              `json:"op"`
	Nodes       []canvas.Node       `json:"nodes,omitempty"`
	Connections []canvas.Connection `json:"connections,omitempty"`
	IDs         []string            `json:"ids,omitempty"`
	NodeID      string              `json:"nodeId,omitempty"`
	GroupID     string              `json:"groupId,omitempty"`
}

// errorFrame is sent for rejected operations. The socket stays open.
type errorFrame struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	changes := ds.subscribe()
	done := make(chan struct{})
	defer func() {
		ds.unsubscribe(changes)
		close(done)
		_ = conn.Close()
	}()

	s.logger.Debug("socket opened", "docID", ds.id, "remote", r.RemoteAddr)

	// Writer: initial state, then one state frame per applied change.
	// A dedicated goroutine keeps gorilla's one-writer rule intact.
	outgoing := make(chan any, 8)
	go wsWriter(conn, outgoing, done)

	outgoing <- wsState(ds)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-changes:
				select {
				case outgoing <- wsState(ds):
				case <-done:
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("socket closed", "docID", ds.id, "error", err)
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			outgoing <- errorFrame{Op: "error", Message: "malformed frame: " + err.Error()}
			continue
		}
		if msg := s.applyFrame(ds, frame); msg != "" {
			outgoing <- errorFrame{Op: "error", Message: msg}
		}
	}
}

// applyFrame executes one client operation. It returns a non-empty
// message when the operation is rejected.
func (s *Server) applyFrame(ds *docSession, frame clientFrame) string {
	switch frame.Op {
	case "set_nodes":
		doc := canvas.Document{Nodes: frame.Nodes, Connections: ds.sess.Connections()}
		if err := doc.Validate(); err != nil {
			return "invalid nodes: " + err.Error()
		}
		ds.sess.SetNodes(func([]canvas.Node) []canvas.Node { return frame.Nodes })
	case "set_connections":
		doc := canvas.Document{Nodes: ds.sess.Nodes(), Connections: frame.Connections}
		if err := doc.Validate(); err != nil {
			return "invalid connections: " + err.Error()
		}
		ds.sess.SetConnections(func([]canvas.Connection) []canvas.Connection { return frame.Connections })
	case "start_action":
		ds.sess.StartAction()
	case "end_action":
		ds.sess.EndAction()
	case "undo":
		ds.sess.Undo()
	case "redo":
		ds.sess.Redo()
	case "select":
		ds.sess.Select(frame.IDs)
	case "create_group":
		if len(frame.IDs) > 0 {
			ds.sess.Select(frame.IDs)
		}
		if _, ok := ds.sess.CreateGroupFromSelection(); !ok {
			return "grouping requires at least two groupable nodes"
		}
	case "join_group":
		if !ds.sess.JoinGroup(frame.NodeID, frame.GroupID) {
			return "join_group: unknown node or group"
		}
	case "leave_group":
		if !ds.sess.LeaveGroup(frame.NodeID) {
			return "leave_group: node is not in a group"
		}
	default:
		return "unknown op: " + frame.Op
	}
	return ""
}

func wsState(ds *docSession) statePayload {
	state := stateOf(ds)
	state.Op = "state"
	return state
}

// wsWriter serializes all writes to the connection, including pings.
// It closes the connection on exit so a failed write also unblocks
// the read loop: without that, reader sends into a full outgoing
// buffer would wait on a writer that is gone.
func wsWriter(conn *websocket.Conn, outgoing <-chan any, done <-chan struct{}) {
	defer conn.Close()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case msg := <-outgoing:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
