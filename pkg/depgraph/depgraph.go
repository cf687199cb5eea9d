// Package depgraph builds the bounded dependency graph reachable from
// a root package.
//
// The builder walks a parsed [index.Relation] depth-first, spending one
// level of depth budget per descent. Three pruning rules shape the
// result:
//
//   - A package reached with an exhausted budget is left out entirely:
//     no graph entry, no visited mark.
//   - A dependency whose name contains the filter substring is neither
//     expanded nor linked.
//   - An edge is recorded only after its target finished expanding.
//     A target still on the current path (a cycle) or cut short by the
//     depth bound is silently unlinked.
//
// The last rule is what makes cycles terminate without explicit cycle
// detection: depth strictly decreases on every descent, so a cyclic
// chain bottoms out at the budget floor and the back edge is dropped.
// It also means Build with maxDepth 0 returns an empty graph — even
// the root gets no entry.
package depgraph

import (
	"slices"
	"strings"

	"github.com/aptgraph/aptgraph/pkg/index"
)

// Graph maps a package name to the set of its included dependencies.
// Keys are exactly the packages that were expanded during the build:
// visited while depth budget remained. A name that appears in an edge
// set but not as a key is an unexpanded leaf.
type Graph map[string]index.Set

// Has reports whether the graph expanded the given package.
func (g Graph) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// Children returns the included dependencies of name in sorted order.
// An absent key yields nil, which renderers treat as a leaf.
func (g Graph) Children(name string) []string {
	deps, ok := g[name]
	if !ok {
		return nil
	}
	return deps.Names()
}

// Names returns all expanded package names in sorted order.
func (g Graph) Names() []string {
	names := make([]string, 0, len(g))
	for n := range g {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// EdgeCount returns the total number of included edges.
func (g Graph) EdgeCount() int {
	n := 0
	for _, deps := range g {
		n += len(deps)
	}
	return n
}

// Build produces the dependency graph reachable from root within
// maxDepth levels, excluding dependencies whose name contains filter
// (ignored when filter is empty).
//
// Build never fails. An unknown root yields a graph with a single
// empty entry for the root (assuming maxDepth > 0); callers that want
// "package absent" reported should check the relation before calling.
// A negative maxDepth is treated as already exhausted.
//
// The relation is read-only input; Build never mutates it, and all
// traversal state is local to the call, so concurrent Builds over the
// same relation are safe.
func Build(root string, rel index.Relation, maxDepth int, filter string) Graph {
	b := &builder{
		rel:    rel,
		filter: filter,
		graph:  make(Graph),
		seen:   make(map[string]bool),
	}
	b.expand(root, maxDepth)
	return b.graph
}

// builder threads the traversal accumulators through the recursion.
// graph and seen live for exactly one Build call.
type builder struct {
	rel    index.Relation
	filter string
	graph  Graph
	seen   map[string]bool
}

// expand visits name with the given remaining depth budget.
//
// The visited mark is post-order: it is set only after every dependency
// of name has been processed. Linking a dependency is gated on that
// mark, which is how both depth-truncated nodes and cycle members end
// up unlinked.
func (b *builder) expand(name string, depth int) {
	if depth <= 0 {
		return
	}

	// Last write wins if the same name is re-expanded via another path.
	b.graph[name] = index.NewSet()

	for dep := range b.rel.Deps(name) {
		if b.filter != "" && strings.Contains(dep, b.filter) {
			continue
		}
		if !b.graph.Has(dep) {
			b.expand(dep, depth-1)
		}
		if b.seen[dep] {
			b.graph[name].Add(dep)
		}
	}

	b.seen[name] = true
}
