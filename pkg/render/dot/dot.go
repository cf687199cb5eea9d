// Package dot converts a dependency graph to Graphviz DOT and
// rasterizes it through go-graphviz.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/goccy/go-graphviz"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
)

// ToDOT converts the graph to Graphviz DOT format. The root node is
// drawn bold; unexpanded leaves (edge targets without a graph entry of
// their own) are drawn dashed. Nodes and edges are emitted in sorted
// order so the output is deterministic.
func ToDOT(g depgraph.Graph, root string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontsize=12];\n")
	buf.WriteString("\n")

	for _, name := range nodeNames(g, root) {
		attrs := ""
		switch {
		case name == root:
			attrs = " [style=\"rounded,bold\"]"
		case !g.Has(name):
			attrs = " [style=\"rounded,dashed\"]"
		}
		fmt.Fprintf(&buf, "  %q%s;\n", name, attrs)
	}

	buf.WriteString("\n")
	for _, name := range g.Names() {
		for _, dep := range g.Children(name) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeNames collects every name appearing in the graph, as key or edge
// target, plus the root, sorted and de-duplicated.
func nodeNames(g depgraph.Graph, root string) []string {
	seen := map[string]bool{root: true}
	for name, deps := range g {
		seen[name] = true
		for dep := range deps {
			seen[dep] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
