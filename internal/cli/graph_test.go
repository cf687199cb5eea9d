package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aptgraph/aptgraph/pkg/config"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/graphio"
)

const testIndex = `Package: foo
Depends: bar, baz (>= 1.2)

Package: bar
Pre-Depends: qux:any

Package: baz

Package: qux
`

func writeIndex(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Packages")
	if err := os.WriteFile(path, []byte(testIndex), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseOpts() graphOpts {
	return graphOpts{
		pkg:       "foo",
		repoURL:   "http://deb.debian.org/debian/Packages.gz",
		testMode:  errors.TestModeOff,
		asciiTree: errors.TreeModeOff,
		maxDepth:  defaultMaxDepth,
	}
}

func TestResolveGraphOpts(t *testing.T) {
	indexPath := writeIndex(t)

	tests := []struct {
		name     string
		mutate   func(*graphOpts)
		cfg      config.Config
		wantCode errors.Code
	}{
		{
			name:   "valid url source",
			mutate: func(o *graphOpts) {},
		},
		{
			name: "valid local source",
			mutate: func(o *graphOpts) {
				o.repoURL = ""
				o.repoPath = indexPath
				o.testMode = errors.TestModeReadonly
			},
		},
		{
			name:     "missing package",
			mutate:   func(o *graphOpts) { o.pkg = "" },
			wantCode: errors.ErrCodeInvalidPackage,
		},
		{
			name:     "package with spaces",
			mutate:   func(o *graphOpts) { o.pkg = "foo bar" },
			wantCode: errors.ErrCodeInvalidPackage,
		},
		{
			name:     "bad test mode",
			mutate:   func(o *graphOpts) { o.testMode = "dry-run" },
			wantCode: errors.ErrCodeInvalidMode,
		},
		{
			name:     "bad tree mode",
			mutate:   func(o *graphOpts) { o.asciiTree = "fancy" },
			wantCode: errors.ErrCodeInvalidMode,
		},
		{
			name:     "negative depth",
			mutate:   func(o *graphOpts) { o.maxDepth = -3 },
			wantCode: errors.ErrCodeInvalidDepth,
		},
		{
			name: "both sources",
			mutate: func(o *graphOpts) {
				o.repoPath = indexPath
				o.testMode = errors.TestModeReadonly
			},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "no source",
			mutate:   func(o *graphOpts) { o.repoURL = "" },
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "bad url scheme",
			mutate:   func(o *graphOpts) { o.repoURL = "file:///etc/passwd" },
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name: "local source requires test mode",
			mutate: func(o *graphOpts) {
				o.repoURL = ""
				o.repoPath = indexPath
			},
			wantCode: errors.ErrCodeInvalidMode,
		},
		{
			name: "local source must exist",
			mutate: func(o *graphOpts) {
				o.repoURL = ""
				o.repoPath = filepath.Join(t.TempDir(), "nope")
				o.testMode = errors.TestModeReadonly
			},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name: "local source must be a file",
			mutate: func(o *graphOpts) {
				o.repoURL = ""
				o.repoPath = t.TempDir()
				o.testMode = errors.TestModeReadonly
			},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:   "config supplies source",
			mutate: func(o *graphOpts) { o.repoURL = "" },
			cfg: config.Config{
				Repo: config.RepoConfig{URL: "https://example.org/Packages"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOpts()
			tt.mutate(&opts)
			err := resolveGraphOpts(&opts, tt.cfg)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("resolveGraphOpts() error = %v", err)
				}
				return
			}
			if errors.GetCode(err) != tt.wantCode {
				t.Errorf("resolveGraphOpts() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestResolveGraphOptsConfigDefaults(t *testing.T) {
	opts := baseOpts()
	cfg := config.Config{Graph: config.GraphConfig{Filter: "dbg"}}
	if err := resolveGraphOpts(&opts, cfg); err != nil {
		t.Fatalf("resolveGraphOpts() error = %v", err)
	}
	if opts.filter != "dbg" {
		t.Errorf("filter = %q, want config default", opts.filter)
	}

	// A flag value wins over the config.
	opts = baseOpts()
	opts.filter = "doc"
	if err := resolveGraphOpts(&opts, cfg); err != nil {
		t.Fatalf("resolveGraphOpts() error = %v", err)
	}
	if opts.filter != "doc" {
		t.Errorf("filter = %q, want flag value", opts.filter)
	}
}

func TestRunGraphLocalIndex(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json")
	opts := baseOpts()
	opts.repoURL = ""
	opts.repoPath = writeIndex(t)
	opts.testMode = errors.TestModeReadonly
	opts.output = out

	c := New(os.Stderr, LogInfo)
	if err := c.runGraph(context.Background(), &opts, config.Default()); err != nil {
		t.Fatalf("runGraph() error = %v", err)
	}

	g, root, err := graphio.ImportFile(out)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if root != "foo" {
		t.Errorf("root = %q", root)
	}
	for _, name := range []string{"foo", "bar", "baz", "qux"} {
		if !g.Has(name) {
			t.Errorf("missing node %q", name)
		}
	}
}

func TestRunGraphUnknownPackage(t *testing.T) {
	opts := baseOpts()
	opts.pkg = "ghost"
	opts.repoURL = ""
	opts.repoPath = writeIndex(t)
	opts.testMode = errors.TestModeReadonly

	c := New(os.Stderr, LogInfo)
	err := c.runGraph(context.Background(), &opts, config.Default())
	if errors.GetCode(err) != errors.ErrCodePackageNotFound {
		t.Errorf("runGraph() error = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestRunGraphSimulateUnknownPackage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json")
	opts := baseOpts()
	opts.pkg = "ghost"
	opts.repoURL = ""
	opts.repoPath = writeIndex(t)
	opts.testMode = errors.TestModeSimulate
	opts.output = out

	c := New(os.Stderr, LogInfo)
	if err := c.runGraph(context.Background(), &opts, config.Default()); err != nil {
		t.Fatalf("runGraph() error = %v", err)
	}
	g, root, err := graphio.ImportFile(out)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if root != "ghost" || !g.Has("ghost") || len(g.Children("ghost")) != 0 {
		t.Errorf("simulate graph = %v root %q, want bare root", g, root)
	}
}

func TestRunGraphFilter(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json")
	opts := baseOpts()
	opts.repoURL = ""
	opts.repoPath = writeIndex(t)
	opts.testMode = errors.TestModeReadonly
	opts.filter = "ba"
	opts.output = out

	c := New(os.Stderr, LogInfo)
	if err := c.runGraph(context.Background(), &opts, config.Default()); err != nil {
		t.Fatalf("runGraph() error = %v", err)
	}
	g, _, err := graphio.ImportFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if g.Has("bar") || g.Has("baz") {
		t.Errorf("filtered packages expanded: %v", g)
	}
	if strings.Contains(strings.Join(g.Children("foo"), " "), "ba") {
		t.Errorf("filtered packages linked: %v", g.Children("foo"))
	}
}
