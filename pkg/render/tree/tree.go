// Package tree renders a dependency graph as an ASCII tree.
//
// The tree is rooted at the queried package and drawn with box-drawing
// connectors. Children are sorted by name so output is deterministic.
// A package that appears in an edge set but has no entry of its own in
// the graph is an unexpanded leaf, drawn without children; in detailed
// mode it is marked so truncation is visible.
package tree

import (
	"fmt"
	"strings"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
)

// Options configures tree rendering.
type Options struct {
	// Detailed annotates each node with its included dependency count
	// and marks unexpanded leaves.
	Detailed bool
}

const (
	connectorMid  = "├── "
	connectorLast = "└── "
	indentMid     = "│   "
	indentLast    = "    "
)

// Render draws the graph as an ASCII tree rooted at root.
//
// Shared dependencies appear once per path. The builder never produces
// cycles, but imported graph files may carry them after hand edits, so
// a node already on the current path is drawn as a leaf instead of
// recursing forever.
func Render(g depgraph.Graph, root string, opts Options) string {
	var b strings.Builder
	b.WriteString(label(g, root, opts))
	b.WriteByte('\n')
	renderChildren(&b, g, root, "", opts, map[string]bool{root: true})
	return b.String()
}

func renderChildren(b *strings.Builder, g depgraph.Graph, name, prefix string, opts Options, path map[string]bool) {
	children := g.Children(name)
	for i, child := range children {
		connector, indent := connectorMid, indentMid
		if i == len(children)-1 {
			connector, indent = connectorLast, indentLast
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(label(g, child, opts))
		b.WriteByte('\n')
		if path[child] {
			continue
		}
		path[child] = true
		renderChildren(b, g, child, prefix+indent, opts, path)
		delete(path, child)
	}
}

func label(g depgraph.Graph, name string, opts Options) string {
	if !opts.Detailed {
		return name
	}
	deps, ok := g[name]
	if !ok {
		return name + " [unexpanded]"
	}
	return fmt.Sprintf("%s (%d deps)", name, len(deps))
}
