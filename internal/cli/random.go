package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tally/pkg/composition"
	"github.com/matzehuels/tally/pkg/pipeline"
)

// randomCommand creates the random command for generating compositions.
func (c *CLI) randomCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
	)
	opts := pipeline.Options{Random: true}

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random composition",
		Long: `Generate a random composition from a seed.

The same seed always produces the same composition, so results can be
shared and reproduced. Generation retries until the depth and arity
constraints are met.

By default the canonical record is written next to the rendered outputs,
so it can be re-rendered later with 'tally render'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRandom(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: tally-<seed>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")

	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&opts.MinDepth, "min-depth", 0, "minimum nesting depth (default 2)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum nesting depth (default 4)")
	cmd.Flags().IntVar(&opts.MaxArity, "max-arity", 0, "maximum terms per combinator (default 4)")
	cmd.Flags().Float64Var(&opts.ProbEmpty, "prob-empty", 0, "probability of an empty tile (default 0.25)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "grid side length in inches (default 5)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label grid vertices with their indices")
	cmd.Flags().BoolVar(&opts.Diagram, "diagram", false, "render the box-and-wire diagram instead of the grid")

	return cmd
}

// runRandom generates a composition, writes the record, and renders it.
func (c *CLI) runRandom(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating composition (seed %d)...", opts.Seed))
	spinner.Start()
	prog := newProgress(logger)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Generated %d tiles at depth %d", result.Stats.Tiles, result.Stats.Depth))

	base := output
	if base == "" {
		base = fmt.Sprintf("tally-%d", opts.Seed)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	recordPath := base + ".record.json"
	if err := composition.WriteFile(result.Composition, recordPath); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	printSuccess("Generated %s", StyleHighlight.Render(result.Composition.String()))
	printStats(result.Stats.Tiles, result.Stats.Depth, result.CacheInfo.ComposeHit)
	printFile(recordPath)

	if err := writeArtifacts(result.Artifacts, opts.Formats, base); err != nil {
		return err
	}
	printNextStep("Re-render with", fmt.Sprintf("tally render %s", recordPath))
	return nil
}
