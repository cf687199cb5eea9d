package cli

import (
	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/internal/server"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/source"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	repoURL  string
	repoPath string
	maxDepth int
	noCache  bool
}

// serveCommand creates the serve command. It loads the index once and
// serves graph queries over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", maxDepth: defaultMaxDepth}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency graphs over HTTP",
		Long: `Serve fetches a Packages index, parses it once, and answers graph
queries over HTTP:

  GET /api/graph/{package}?depth=3&filter=doc
  GET /api/tree/{package}
  GET /api/svg/{package}

The index is not refreshed while the server runs; restart to pick up
a new snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
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
			if opts.repoPath != "" {
				if err := checkRepoPath(opts.repoPath); err != nil {
					return err
				}
			}
			if err := errors.ValidateDepth(opts.maxDepth); err != nil {
				return err
			}

			ctx := cmd.Context()

			var src source.Source
			if opts.repoPath != "" {
				src = &source.Local{Path: opts.repoPath}
			} else {
				if err := errors.ValidateURL(opts.repoURL); err != nil {
					return err
				}
				store, err := newCache(ctx, cfg, opts.noCache)
				if err != nil {
					return err
				}
				src = source.NewHTTP(opts.repoURL, store, cacheTTL(cfg))
			}
			rel, _, err := c.fetchAndParse(ctx, src)
			if err != nil {
				return err
			}

			srv := server.New(rel, loggerFromContext(ctx), opts.maxDepth)
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.repoURL, "repo-url", "", "URL of the Packages index (plain, .gz or .bz2)")
	cmd.Flags().StringVar(&opts.repoPath, "repo-path", "", "path to a local Packages index file")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "default traversal depth for requests without ?depth=")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the index cache")

	return cmd
}
