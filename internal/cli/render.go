package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tally/pkg/pipeline"
)

// renderCommand creates the render command for rendering stored records.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [record.json]",
		Short: "Render a composition record",
		Long: `Render a composition record to SVG, PNG, DOT, or JSON.

The record is canonicalized on load, so equivalent records always render
to the same output. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "grid side length in inches (default 5)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label grid vertices with their indices")
	cmd.Flags().BoolVar(&opts.Diagram, "diagram", false, "render the box-and-wire diagram instead of the grid")

	return cmd
}

// runRender loads the record and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	record, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load record %s: %w", input, err)
	}
	opts.Record = record

	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", input))
	spinner.Start()
	prog := newProgress(logger)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(opts.Formats)))

	printSuccess("Rendered %s", StyleHighlight.Render(result.Composition.String()))
	printStats(result.Stats.Tiles, result.Stats.Depth, result.CacheInfo.RenderHit)

	base := basePath(output, input)
	if output != "" && len(opts.Formats) == 1 {
		return writeArtifact(result.Artifacts[opts.Formats[0]], output)
	}
	return writeArtifacts(result.Artifacts, opts.Formats, base)
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output carries
// a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".record")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each rendered format to base.<format>.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) error {
	for _, format := range formats {
		path := base + "." + format
		if err := writeArtifact(artifacts[format], path); err != nil {
			return err
		}
	}
	return nil
}

// writeArtifact writes a single rendered artifact to path.
func writeArtifact(data []byte, path string) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
