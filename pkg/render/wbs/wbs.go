// Package wbs emits a PlantUML work-breakdown-structure description
// of a dependency graph.
//
// The output is plain text between @startwbs and @endwbs markers, one
// node per line, nesting depth encoded by the number of leading
// asterisks. Feeding it to PlantUML produces a diagram equivalent to
// the ASCII tree.
package wbs

import (
	"strings"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
)

// Render emits the PlantUML WBS text for the graph rooted at root.
// Children are sorted by name for deterministic output. A node already
// on the current path (a cycle in a hand-edited graph file) is emitted
// as a leaf rather than recursed into.
func Render(g depgraph.Graph, root string) string {
	var b strings.Builder
	b.WriteString("@startwbs\n")
	writeNode(&b, g, root, 1, map[string]bool{root: true})
	b.WriteString("@endwbs\n")
	return b.String()
}

func writeNode(b *strings.Builder, g depgraph.Graph, name string, level int, path map[string]bool) {
	b.WriteString(strings.Repeat("*", level))
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteByte('\n')
	for _, child := range g.Children(name) {
		if path[child] {
			b.WriteString(strings.Repeat("*", level+1))
			b.WriteByte(' ')
			b.WriteString(child)
			b.WriteByte('\n')
			continue
		}
		path[child] = true
		writeNode(b, g, child, level+1, path)
		delete(path, child)
	}
}
