package tree

import (
	"testing"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
)

func TestRender_Simple(t *testing.T) {
	g := depgraph.Graph{
		"foo": index.NewSet("bar", "baz"),
		"bar": index.NewSet("baz"),
		"baz": index.NewSet(),
	}

	got := Render(g, "foo", Options{})
	want := `foo
├── bar
│   └── baz
└── baz
`
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_Detailed(t *testing.T) {
	g := depgraph.Graph{
		"foo": index.NewSet("bar", "ghost"),
		"bar": index.NewSet(),
	}

	got := Render(g, "foo", Options{Detailed: true})
	want := `foo (2 deps)
├── bar (0 deps)
└── ghost [unexpanded]
`
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_RootOnly(t *testing.T) {
	g := depgraph.Graph{"foo": index.NewSet()}

	if got := Render(g, "foo", Options{}); got != "foo\n" {
		t.Errorf("Render = %q, want %q", got, "foo\n")
	}
}

func TestRender_AbsentRootIsLeaf(t *testing.T) {
	// An empty graph (maxDepth 0) still renders the root as a bare leaf.
	if got := Render(depgraph.Graph{}, "foo", Options{}); got != "foo\n" {
		t.Errorf("Render = %q, want %q", got, "foo\n")
	}
}

func TestRender_SharedDependencyRepeats(t *testing.T) {
	g := depgraph.Graph{
		"a": index.NewSet("b", "c"),
		"b": index.NewSet("d"),
		"c": index.NewSet("d"),
		"d": index.NewSet(),
	}

	got := Render(g, "a", Options{})
	want := `a
├── b
│   └── d
└── c
    └── d
`
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_CyclicGraphTerminates(t *testing.T) {
	// The builder never emits cycles, but an imported graph file can
	// carry one after hand edits. The repeated node renders as a leaf.
	g := depgraph.Graph{
		"a": index.NewSet("b"),
		"b": index.NewSet("a"),
	}

	got := Render(g, "a", Options{})
	want := `a
└── b
    └── a
`
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_SelfLoopTerminates(t *testing.T) {
	g := depgraph.Graph{
		"a": index.NewSet("a"),
	}

	got := Render(g, "a", Options{})
	want := "a\n└── a\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}
