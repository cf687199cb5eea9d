package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/graphio"
	"github.com/aptgraph/aptgraph/pkg/index"
)

func exportedGraph(t *testing.T) string {
	t.Helper()
	g := make(depgraph.Graph)
	g["foo"] = index.NewSet("bar")
	g["bar"] = index.NewSet()

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graphio.ExportFile(path, g, "foo"); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRenderWBSToFile(t *testing.T) {
	in := exportedGraph(t)
	out := filepath.Join(t.TempDir(), "graph.puml")

	opts := renderOpts{format: formatWBS, output: out}
	if err := runRender(context.Background(), in, &opts); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{"@startwbs", "* foo", "** bar", "@endwbs"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunRenderDOTToFile(t *testing.T) {
	in := exportedGraph(t)
	out := filepath.Join(t.TempDir(), "graph.dot")

	opts := renderOpts{format: formatDOT, output: out}
	if err := runRender(context.Background(), in, &opts); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"foo" -> "bar"`) {
		t.Errorf("output missing edge:\n%s", data)
	}
}

func TestRunRenderInvalidFormat(t *testing.T) {
	opts := renderOpts{format: "gif"}
	err := runRender(context.Background(), exportedGraph(t), &opts)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("runRender() error = %v, want INVALID_INPUT", err)
	}
}

func TestRunRenderMissingFile(t *testing.T) {
	opts := renderOpts{format: formatTree}
	if err := runRender(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &opts); err == nil {
		t.Error("runRender() expected error for missing input")
	}
}

func TestGraphImportRejectsMissingRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(`{"root":"","nodes":[],"edges":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := graphImport(path)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("graphImport() error = %v, want INVALID_INPUT", err)
	}
}
