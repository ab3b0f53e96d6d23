package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
)

func TestStarterDocumentIsValid(t *testing.T) {
	doc := starterDocument()
	if err := doc.Validate(); err != nil {
		t.Fatalf("starter document invalid: %v", err)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("starter has %d nodes, want 4", len(doc.Nodes))
	}
	if len(doc.Connections) != 3 {
		t.Errorf("starter has %d connections, want 3", len(doc.Connections))
	}
}

func TestStarterDocumentRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starter.json")
	if err := canvas.Export(path, starterDocument()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc, err := canvas.Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !doc.Equal(starterDocument()) {
		t.Error("starter document changed across export/import")
	}
}

func TestRootCommandTree(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := map[string]bool{"serve": false, "init": false, "export": false, "inspect": false, "completion": false}
	for _, cmd := range root.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing %q", name)
		}
	}
}

func TestStatsTable(t *testing.T) {
	out := statsTable(starterDocument(), 500)
	for _, want := range []string{"number", "math", "sphere", "viewport", "connections", "groups", "history capacity", "500"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats table missing %q:\n%s", want, out)
		}
	}
}

func TestServiceURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":7474", "http://localhost:7474"},
		{"0.0.0.0:8080", "http://0.0.0.0:8080"},
		{"example.test:80", "http://example.test:80"},
	}
	for _, tc := range tests {
		if got := serviceURL(tc.addr); got != tc.want {
			t.Errorf("serviceURL(%q) = %q, want %q", tc.addr, got, tc.want)
		}
	}
}
