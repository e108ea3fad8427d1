package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/render/timeline"
)

// timelineOptions holds the flags of the timeline command.
type timelineOptions struct {
	output   string
	format   string
	detailed bool
	noCache  bool
	refresh  bool
}

// timelineCommand creates the timeline command.
func (c *CLI) timelineCommand() *cobra.Command {
	opts := timelineOptions{}

	cmd := &cobra.Command{
		Use:   "timeline [file]",
		Short: "Render every line's progression over ticks as DOT or SVG",
		Long: `Render every line's progression over ticks as DOT or SVG.

Each line becomes a row of checkpoints, one per element consumed, labelled
with the tick it was reached at. The final arrivals are highlighted and
lines blocked by an invalid element end in a red node.

With a file argument the output defaults to <file>.<format>. Input read
from stdin is written to stdout unless -o is given.`,
		Example: `  redwire timeline lines.txt
  redwire timeline lines.txt --format dot -o lines.dot
  printf 'R1C\nCR1\n' | redwire timeline --detailed > run.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTimeline(cmd, inputPath(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <file>.<format>, or stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", timeline.FormatSVG, "output format: svg, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label edges with tick advancements")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached output and re-render")

	return cmd
}

func (c *CLI) runTimeline(cmd *cobra.Command, input string, opts timelineOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	texts, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, hit, err := runner.Timeline(ctx, texts, pipeline.TimelineOptions{
		Options:  pipeline.Options{NoCache: opts.noCache, Refresh: opts.refresh},
		Format:   opts.format,
		Detailed: opts.detailed,
	})
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes (cached: %v)", opts.format, len(data), hit)

	path := outputPath(opts.output, input, opts.format)
	out, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", opts.format, err)
	}

	if path != "" {
		prog.done("Rendered timeline")
		printFile(cmd.ErrOrStderr(), path)
	}
	return nil
}

// outputPath derives the output file from the -o flag and the input file.
// It returns "" for stdout.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	if input == "" || input == "-" {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

// openOutput opens path for writing, or the command's output stream when
// path is "".
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
