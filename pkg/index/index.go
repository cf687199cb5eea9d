// Package index parses Debian-style Packages index text into a
// dependency relation.
//
// A Packages index is a field-based text document. Each stanza starts
// with a "Package:" line naming the package; "Depends:" and
// "Pre-Depends:" lines declare its dependencies. The parser discards
// everything a dependency resolver would care about — version
// constraints, architecture qualifiers, alternative groups — and keeps
// only the set of named dependencies per package:
//
//	Package: foo
//	Depends: bar (>= 1.0), baz | qux
//
// becomes foo -> {bar, baz, qux}. The distinction between "any of
// these" and "all of these" is intentionally dropped.
package index

import (
	"regexp"
	"slices"
	"strings"

	"github.com/aptgraph/aptgraph/pkg/errors"
)

// Dependency field labels recognized by the parser. Matching is
// case-sensitive and requires the colon to follow the label directly.
const (
	fieldPackage    = "Package:"
	fieldDepends    = "Depends:"
	fieldPreDepends = "Pre-Depends:"
)

// archQualifier is the architecture suffix stripped from dependency
// names, e.g. "libc6:any" -> "libc6".
const archQualifier = ":any"

// versionClauseRE matches parenthesized version constraints such as
// "(>= 1.2.3)". Constraints are removed before names are extracted.
var versionClauseRE = regexp.MustCompile(`\([^)]*\)`)

// Set is a set of package names. Duplicates collapse; iteration order
// is undefined.
type Set map[string]bool

// NewSet creates a Set containing the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Add inserts name into the set.
func (s Set) Add(name string) { s[name] = true }

// Has reports whether name is in the set.
func (s Set) Has(name string) bool { return s[name] }

// Names returns the set's members in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Relation maps a package name to the set of dependency names it
// declares. A name absent from the relation is an unknown package: it
// declares nothing, but may still appear as a dependency of others.
//
// Relation is built once by [Parse] and treated as read-only input by
// the graph builder.
type Relation map[string]Set

// Has reports whether the relation declares the given package.
func (r Relation) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Deps returns the declared dependency set for name, or an empty set
// if the package is unknown. The returned set must not be mutated.
func (r Relation) Deps(name string) Set {
	if s, ok := r[name]; ok {
		return s
	}
	return Set{}
}

// Packages returns all declared package names in sorted order.
func (r Relation) Packages() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Parse converts raw index text into a Relation.
//
// The scan is line-based. A "Package:" line starts a new stanza: the
// second whitespace-separated token becomes the active package and its
// dependency set is initialized empty, replacing any earlier stanza
// with the same name. "Depends:" and "Pre-Depends:" lines union names
// into the active set.
//
// A dependency line before any "Package:" line, or a "Package:" line
// without a name token, fails with errors.ErrCodeParse and no partial
// relation is returned.
func Parse(text string) (Relation, error) {
	rel := make(Relation)
	active := ""

	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, fieldPackage):
			tokens := strings.Fields(line)
			if len(tokens) < 2 {
				return nil, errors.New(errors.ErrCodeParse, "line %d: Package field without a name", i+1)
			}
			active = tokens[1]
			rel[active] = NewSet()

		case strings.HasPrefix(line, fieldDepends):
			if err := addDeps(rel, active, line[len(fieldDepends):], i+1); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, fieldPreDepends):
			if err := addDeps(rel, active, line[len(fieldPreDepends):], i+1); err != nil {
				return nil, err
			}
		}
	}

	return rel, nil
}

// addDeps extracts dependency names from a field body and unions them
// into the active package's set.
func addDeps(rel Relation, active, body string, lineNo int) error {
	if active == "" {
		return errors.New(errors.ErrCodeParse, "line %d: dependency field before any Package field", lineNo)
	}
	for _, name := range splitNames(body) {
		rel[active].Add(name)
	}
	return nil
}

// splitNames reduces a Depends field body to bare package names:
// version clauses, commas and alternative separators become
// whitespace, architecture qualifiers are stripped, and the remainder
// splits on whitespace. Alternatives collapse into independent names.
func splitNames(body string) []string {
	body = versionClauseRE.ReplaceAllString(body, " ")
	body = strings.NewReplacer(",", " ", "|", " ").Replace(body)

	fields := strings.Fields(body)
	names := fields[:0]
	for _, f := range fields {
		if name := strings.TrimSuffix(f, archQualifier); name != "" {
			names = append(names, name)
		}
	}
	return names
}
