package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/config"
	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/graphio"
	"github.com/aptgraph/aptgraph/pkg/index"
	"github.com/aptgraph/aptgraph/pkg/render/tree"
	"github.com/aptgraph/aptgraph/pkg/source"
)

// defaultMaxDepth bounds the traversal when --max-depth is not given
// and no config value is set.
const defaultMaxDepth = 5

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	pkg       string // root package name
	repoURL   string // Packages index URL (http/https/ftp)
	repoPath  string // local Packages index file
	testMode  string // off, readonly, simulate
	asciiTree string // off, simple, detailed
	maxDepth  int    // traversal depth bound
	filter    string // substring; matching dependencies are skipped
	output    string // JSON output file
	noCache   bool   // bypass the index cache
}

// graphCommand creates the graph command, the main entry point: it
// fetches a Packages index, walks the dependency relation of the
// chosen package, and reports the resulting graph.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{
		testMode:  errors.TestModeOff,
		asciiTree: errors.TreeModeOff,
		maxDepth:  defaultMaxDepth,
	}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the dependency graph of a Debian package",
		Long: `Build fetches a Packages index from a repository URL or a local file,
parses the Depends and Pre-Depends fields of every package, and walks
the dependency relation of the chosen package down to --max-depth.

Dependencies whose name contains the --filter substring are skipped.
Exactly one of --repo-url and --repo-path must be given (a default
repo can also be set in the config file). Local files require a
--test-mode other than off.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-depth") && cfg.Graph.MaxDepth > 0 {
				opts.maxDepth = cfg.Graph.MaxDepth
			}
			if err := resolveGraphOpts(&opts, cfg); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), &opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "package to build the graph for (required)")
	cmd.Flags().StringVar(&opts.repoURL, "repo-url", "", "URL of the Packages index (plain, .gz or .bz2)")
	cmd.Flags().StringVar(&opts.repoPath, "repo-path", "", "path to a local Packages index file")
	cmd.Flags().StringVar(&opts.testMode, "test-mode", opts.testMode, "test mode: off, readonly, simulate")
	cmd.Flags().StringVar(&opts.asciiTree, "ascii-tree", opts.asciiTree, "print the graph as a tree: off, simple, detailed")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum traversal depth (default 5)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "skip dependencies whose name contains this substring")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the graph as JSON to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the index cache")
	_ = cmd.MarkFlagRequired("package")

	return cmd
}

// resolveGraphOpts validates flags and layers config defaults under
// flags the user did not pass.
func resolveGraphOpts(opts *graphOpts, cfg config.Config) error {
	if err := errors.ValidatePackageName(opts.pkg); err != nil {
		return err
	}
	if err := errors.ValidateTestMode(opts.testMode); err != nil {
		return err
	}
	if err := errors.ValidateTreeMode(opts.asciiTree); err != nil {
		return err
	}

	if err := errors.ValidateDepth(opts.maxDepth); err != nil {
		return err
	}
	if opts.filter == "" {
		opts.filter = cfg.Graph.Filter
	}

	if opts.repoURL == "" && opts.repoPath == "" {
		opts.repoURL = cfg.Repo.URL
		opts.repoPath = cfg.Repo.Path
	}
	if opts.repoURL != "" && opts.repoPath != "" {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of --repo-url and --repo-path must be given, not both")
	}
	if opts.repoURL == "" && opts.repoPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "either --repo-url or --repo-path is required")
	}
	if opts.repoURL != "" {
		if err := errors.ValidateURL(opts.repoURL); err != nil {
			return err
		}
	}
	if opts.repoPath != "" {
		if opts.testMode == errors.TestModeOff {
			return errors.New(errors.ErrCodeInvalidMode, "--repo-path requires --test-mode readonly or simulate")
		}
		if err := checkRepoPath(opts.repoPath); err != nil {
			return err
		}
	}
	return nil
}

// checkRepoPath rejects a local index path that does not point at a
// regular file, so the mistake surfaces as a usage error instead of a
// fetch failure.
func checkRepoPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "repo path does not exist: %s", path)
	}
	if info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "repo path is a directory, not an index file: %s", path)
	}
	return nil
}

func (c *CLI) runGraph(ctx context.Context, opts *graphOpts, cfg config.Config) error {
	logger := loggerFromContext(ctx)
	echoOpts(logger, opts)

	src, err := c.newSource(ctx, opts, cfg)
	if err != nil {
		return err
	}

	rel, cached, err := c.fetchAndParse(ctx, src)
	if err != nil {
		return err
	}

	// In simulate mode an unknown root still yields a valid (leaf-only)
	// graph; otherwise it is an error.
	if opts.testMode != errors.TestModeSimulate && !rel.Has(opts.pkg) {
		return errors.New(errors.ErrCodePackageNotFound, "package %q not found in index %s", opts.pkg, src.Location())
	}

	step := newProgress(logger)
	g := depgraph.Build(opts.pkg, rel, opts.maxDepth, opts.filter)
	step.done(fmt.Sprintf("Built graph for %s", opts.pkg))

	printSuccess("Dependency graph for %s (depth %d)", StyleHighlight.Render(opts.pkg), opts.maxDepth)
	printStats(len(g), g.EdgeCount(), cached)

	if opts.asciiTree != errors.TreeModeOff {
		printNewline()
		fmt.Print(tree.Render(g, opts.pkg, tree.Options{
			Detailed: opts.asciiTree == errors.TreeModeDetailed,
		}))
	}

	if opts.output != "" {
		if err := graphio.ExportFile(opts.output, g, opts.pkg); err != nil {
			return err
		}
		printFile(opts.output)
		printNextStep("Render it", fmt.Sprintf("%s render %s --format svg", appName, opts.output))
	}
	return nil
}

// newSource builds the index source selected by the flags. Local
// sources never touch the cache; HTTP sources go through the
// configured backend.
func (c *CLI) newSource(ctx context.Context, opts *graphOpts, cfg config.Config) (source.Source, error) {
	if opts.repoPath != "" {
		return &source.Local{Path: opts.repoPath}, nil
	}
	// readonly keeps the cache untouched so repeated runs observe the
	// live index.
	noCache := opts.noCache || opts.testMode == errors.TestModeReadonly
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return source.NewHTTP(opts.repoURL, store, cacheTTL(cfg)), nil
}

func (c *CLI) fetchAndParse(ctx context.Context, src source.Source) (index.Relation, bool, error) {
	spin := newSpinner(ctx, fmt.Sprintf("Fetching index from %s", src.Location()))
	spin.Start()
	text, cached, err := src.Fetch(ctx)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("Fetch failed: %s", errors.UserMessage(err)))
		return nil, false, err
	}
	spin.Stop()

	step := newProgress(loggerFromContext(ctx))
	rel, err := index.Parse(text)
	if err != nil {
		return nil, false, err
	}
	step.done(fmt.Sprintf("Parsed %d packages", len(rel)))
	return rel, cached, nil
}

// echoOpts logs the effective settings at debug level, skipping empty
// values.
func echoOpts(logger *log.Logger, opts *graphOpts) {
	kv := []any{"package", opts.pkg, "max-depth", opts.maxDepth}
	if opts.repoURL != "" {
		kv = append(kv, "repo-url", opts.repoURL)
	}
	if opts.repoPath != "" {
		kv = append(kv, "repo-path", opts.repoPath)
	}
	if opts.testMode != errors.TestModeOff {
		kv = append(kv, "test-mode", opts.testMode)
	}
	if opts.asciiTree != errors.TreeModeOff {
		kv = append(kv, "ascii-tree", opts.asciiTree)
	}
	if opts.filter != "" {
		kv = append(kv, "filter", opts.filter)
	}
	logger.Debug("effective settings", kv...)
}
