package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aptgraph/aptgraph/pkg/depgraph"
	"github.com/aptgraph/aptgraph/pkg/errors"
	"github.com/aptgraph/aptgraph/pkg/graphio"
	"github.com/aptgraph/aptgraph/pkg/render/dot"
	"github.com/aptgraph/aptgraph/pkg/render/tree"
	"github.com/aptgraph/aptgraph/pkg/render/wbs"
)

// Output formats accepted by the render command.
const (
	formatTree = "tree" // ASCII tree on stdout
	formatWBS  = "wbs"  // PlantUML work-breakdown diagram
	formatDOT  = "dot"  // Graphviz DOT source
	formatSVG  = "svg"  // rasterized via graphviz
	formatPNG  = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format   string // output format
	output   string // output file; derived from input when empty
	detailed bool   // annotate tree nodes with dependency counts
}

// renderCommand creates the render command. It reads a graph exported
// by `aptgraph graph -o` and re-renders it without touching the
// repository again.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatTree}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render an exported dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: tree, wbs, dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout, or input name with format suffix)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "annotate tree nodes with dependency counts")

	return cmd
}

func runRender(ctx context.Context, path string, opts *renderOpts) error {
	g, root, err := graphImport(path)
	if err != nil {
		return err
	}

	switch opts.format {
	case formatTree:
		out := tree.Render(g, root, tree.Options{Detailed: opts.detailed})
		return writeRendered(opts.output, []byte(out))
	case formatWBS:
		return writeRendered(opts.output, []byte(wbs.Render(g, root)))
	case formatDOT:
		return writeRendered(opts.output, []byte(dot.ToDOT(g, root)))
	case formatSVG, formatPNG:
		return renderImage(ctx, g, root, path, opts)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be tree, wbs, dot, svg or png)", opts.format)
	}
}

func renderImage(ctx context.Context, g depgraph.Graph, root, inputPath string, opts *renderOpts) error {
	src := dot.ToDOT(g, root)

	var data []byte
	var err error
	if opts.format == formatPNG {
		data, err = dot.RenderPNG(ctx, src)
	} else {
		data, err = dot.RenderSVG(ctx, src)
	}
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + opts.format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", out)
	}
	printSuccess("Rendered %s", StyleHighlight.Render(root))
	printFile(out)
	return nil
}

// writeRendered sends text output to the file given by -o, or stdout.
func writeRendered(output string, data []byte) error {
	if output == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}
	printFile(output)
	return nil
}

func graphImport(path string) (depgraph.Graph, string, error) {
	g, root, err := graphio.ImportFile(path)
	if err != nil {
		return nil, "", err
	}
	if root == "" {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "graph file %s has no root package", path)
	}
	return g, root, nil
}
