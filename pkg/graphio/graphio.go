// Package graphio serializes dependency graphs to JSON and back.
//
// The format is a flat node/edge list with the root recorded
// explicitly, so `aptgraph render` can pick up exactly where
// `aptgraph graph -o` left off:
//
//	{
//	  "root": "foo",
//	  "nodes": ["bar", "baz", "foo"],
//	  "expanded": ["baz", "foo"],
//	  "edges": [{"from": "foo", "to": "bar"}]
//	}
//
// "nodes" lists every name in the graph, unexpanded leaves included;
// "expanded" lists exactly the names that were expanded during the
// build, so a package with an empty dependency set survives the round
// trip as an expanded key rather than collapsing into a leaf.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/index"
)

type document struct {
	Root     string   `json:"root"`
	Nodes    []string `json:"nodes"`
	Expanded []string `json:"expanded"`
	Edges    []edge   `json:"edges"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes the graph and its root as JSON on w.
// Nodes and edges are sorted for stable output.
func WriteJSON(w io.Writer, g depgraph.Graph, root string) error {
	doc := document{
		Root:     root,
		Nodes:    collectNodes(g, root),
		Expanded: g.Names(),
	}
	for _, name := range g.Names() {
		for _, dep := range g.Children(name) {
			doc.Edges = append(doc.Edges, edge{From: name, To: dep})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph document from r.
//
// Graph keys are rebuilt from the "expanded" list, so a package whose
// dependency set is empty stays an expanded key instead of collapsing
// into an unexpanded leaf. Edge sources missing from that list (a
// hand-edited document) are added as keys as well; pure edge targets
// stay leaves.
func ReadJSON(r io.Reader) (depgraph.Graph, string, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("decode graph: %w", err)
	}

	g := make(depgraph.Graph)
	for _, name := range doc.Expanded {
		g[name] = index.NewSet()
	}
	for _, e := range doc.Edges {
		if _, ok := g[e.From]; !ok {
			g[e.From] = index.NewSet()
		}
		g[e.From].Add(e.To)
	}
	return g, doc.Root, nil
}

// ExportFile writes the graph to a JSON file at path.
func ExportFile(path string, g depgraph.Graph, root string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, g, root)
}

// ImportFile reads a graph document from the JSON file at path.
func ImportFile(path string) (depgraph.Graph, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func collectNodes(g depgraph.Graph, root string) []string {
	seen := map[string]bool{}
	if root != "" {
		seen[root] = true
	}
	for name, deps := range g {
		seen[name] = true
		for dep := range deps {
			seen[dep] = true
		}
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}
