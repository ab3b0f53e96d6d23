package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemory()
	srv := New(st, log.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.registry.closeAll(context.Background())
	})
	return ts, st
}

func seedDocument(t *testing.T, st store.Store, id string) {
	t.Helper()
	doc := canvas.Document{
		Nodes: []canvas.Node{
			{ID: "num-1", Type: canvas.TypeNumber, Position: canvas.Point{X: 10, Y: 10}, Data: canvas.NumberData{Value: 1}},
			{ID: "num-2", Type: canvas.TypeNumber, Position: canvas.Point{X: 10, Y: 200}, Data: canvas.NumberData{Value: 2}},
		},
	}
	rec := &store.Record{ID: id, Name: "seeded", Document: doc}
	if err := st.Put(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func decodeState(t *testing.T, r io.Reader) statePayload {
	t.Helper()
	var state statePayload
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return state
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestCreateListGet(t *testing.T) {
	ts, _ := newTestServer(t)

	payload := `{"name": "my patch", "document": {"nodes": [{"id": "n1", "type": "number", "position": {"x": 0, "y": 0}, "data": {"value": 3}}], "connections": []}}`
	resp, err := http.Post(ts.URL+"/api/documents", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var rec store.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if rec.ID == "" || rec.Name != "my patch" {
		t.Errorf("created record = %+v", rec)
	}

	resp, err = http.Get(ts.URL + "/api/documents")
	if err != nil {
		t.Fatal(err)
	}
	var infos []store.Info
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(infos) != 1 || infos[0].ID != rec.ID || infos[0].Nodes != 1 {
		t.Errorf("list = %+v, want one entry for %s with 1 node", infos, rec.ID)
	}

	resp, err = http.Get(ts.URL + "/api/documents/" + rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	if etag := resp.Header.Get("ETag"); etag == "" {
		t.Error("get response missing ETag")
	}
	state := decodeState(t, resp.Body)
	if len(state.Nodes) != 1 || state.Nodes[0].ID != "n1" {
		t.Errorf("state nodes = %+v", state.Nodes)
	}
}

func TestGetMissingDocument(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/documents/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "not_found" {
		t.Errorf("error code = %q, want not_found", body.Error)
	}
}

func TestPutValidatesDocument(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	// Connection referencing a missing node must be rejected.
	payload := `{"nodes": [], "connections": [{"id": "c1", "sourceNode": "ghost", "sourcePort": "value", "targetNode": "ghost2", "targetPort": "a"}]}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/documents/doc-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPutUndoRoundTrip(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	payload := `{"nodes": [{"id": "num-1", "type": "number", "position": {"x": 500, "y": 10}, "data": {"value": 1}}], "connections": []}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/documents/doc-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	state := decodeState(t, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}
	if len(state.Nodes) != 1 || !state.CanUndo {
		t.Fatalf("post-put state = %+v, want 1 node and CanUndo", state)
	}

	resp, err = http.Post(ts.URL+"/api/documents/doc-1/undo", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	state = decodeState(t, resp.Body)
	resp.Body.Close()
	if len(state.Nodes) != 2 {
		t.Errorf("post-undo nodes = %d, want 2 (seeded state)", len(state.Nodes))
	}
	if !state.CanRedo {
		t.Error("undo did not populate the redo stack")
	}
}

func TestCreateGroupEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	resp, err := http.Post(ts.URL+"/api/documents/doc-1/groups", "application/json",
		strings.NewReader(`{"ids": ["num-1", "num-2"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var body struct {
		Group canvas.Node `json:"group"`
		statePayload
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if body.Group.Type != canvas.TypeGroup {
		t.Errorf("group type = %q, want group", body.Group.Type)
	}
	if len(body.Nodes) != 3 {
		t.Errorf("state has %d nodes, want 3 (group + members)", len(body.Nodes))
	}

	// Too few members is a 400, not a server error.
	resp, err = http.Post(ts.URL+"/api/documents/doc-1/groups", "application/json",
		strings.NewReader(`{"ids": ["num-1"]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("single-member group status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteEvictsSession(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	// Open the session.
	resp, err := http.Get(ts.URL + "/api/documents/doc-1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/documents/doc-1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/documents/doc-1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestExportDOT(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	resp, err := http.Get(ts.URL + "/api/documents/doc-1/export.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte("digraph patchbay")) {
		t.Errorf("export is not DOT output: %.80s", data)
	}
}

func TestAutosavePersistsChanges(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	payload := `{"nodes": [{"id": "num-1", "type": "number", "position": {"x": 500, "y": 10}, "data": {"value": 1}}], "connections": []}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/documents/doc-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	// The autosave loop runs asynchronously; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, err := st.Get(context.Background(), "doc-1")
		if err == nil && len(rec.Document.Nodes) == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("change never autosaved: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketSession(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/documents/doc-1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var state statePayload
	if err := conn.ReadJSON(&state); err != nil {
		t.Fatalf("initial frame: %v", err)
	}
	if state.Op != "state" || len(state.Nodes) != 2 {
		t.Fatalf("initial frame = %+v, want state frame with 2 nodes", state)
	}

	moved := []canvas.Node{
		{ID: "num-1", Type: canvas.TypeNumber, Position: canvas.Point{X: 500, Y: 10}, Data: canvas.NumberData{Value: 1}},
		{ID: "num-2", Type: canvas.TypeNumber, Position: canvas.Point{X: 10, Y: 200}, Data: canvas.NumberData{Value: 2}},
	}
	frame := map[string]any{"op": "set_nodes", "nodes": moved}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := conn.ReadJSON(&state); err != nil {
		t.Fatalf("state after set_nodes: %v", err)
	}
	if state.Op != "state" || state.Nodes[0].Position.X != 500 {
		t.Errorf("frame after set_nodes = %+v", state)
	}

	// Unknown ops are rejected without closing the socket.
	if err := conn.WriteJSON(map[string]any{"op": "teleport"}); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := conn.ReadJSON(&raw); err != nil {
		t.Fatalf("error frame: %v", err)
	}
	if raw["op"] != "error" {
		t.Errorf("frame = %v, want error frame", raw)
	}

	// The socket still works after a rejected op.
	if err := conn.WriteJSON(map[string]any{"op": "select", "ids": []string{"num-1"}}); err != nil {
		t.Errorf("socket unusable after error frame: %v", err)
	}
}

func TestConcurrentSessionOpen(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	// Concurrent first-opens must converge on one session.
	errs := make(chan error, 8)
	for range 8 {
		go func() {
			resp, err := http.Get(ts.URL + "/api/documents/doc-1")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = fmt.Errorf("status %d", resp.StatusCode)
				}
			}
			errs <- err
		}()
	}
	for range 8 {
		if err := <-errs; err != nil {
			t.Errorf("concurrent get: %v", err)
		}
	}
}

func TestSocketWriterExitUnblocksReader(t *testing.T) {
	readErr := make(chan error, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		outgoing := make(chan any)
		done := make(chan struct{})
		go wsWriter(conn, outgoing, done)
		close(done)

		// With the writer gone the pending read must fail instead of
		// blocking until the client hangs up.
		_, _, err = conn.ReadMessage()
		readErr <- err
	}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case err := <-readErr:
		if err == nil {
			t.Fatal("read returned nil error after the writer exited")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("read side stayed blocked after the writer exited")
	}
}

func TestExportPDFRouted(t *testing.T) {
	ts, st := newTestServer(t)
	seedDocument(t, st, "doc-1")

	// PDF conversion needs librsvg on the host, so only the routing
	// is asserted: the endpoint must resolve, not 404.
	resp, err := http.Get(ts.URL + "/api/documents/doc-1/export.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		t.Fatal("export.pdf is not routed")
	}
}
