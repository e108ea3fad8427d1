package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/report"
)

// calcOptions holds the flags of the calc command.
type calcOptions struct {
	format  string
	strict  bool
	noCache bool
	refresh bool
	summary bool
}

// calcCommand creates the calc command, the calculator itself.
func (c *CLI) calcCommand() *cobra.Command {
	opts := calcOptions{}

	cmd := &cobra.Command{
		Use:   "calc [file]",
		Short: "Simulate redstone lines and print their arrival order",
		Long: `Simulate redstone lines and print their arrival order.

Lines are read from the given file, or from stdin when no file (or "-") is
given. Each non-blank line describes one signal line made of repeaters
(R0-R3) and comparators (C).

A completed run prints the arrival order ("A,B,C") to stdout. A malformed
run prints its warnings and the final tick map to stderr and nothing to
stdout. Both exit with status 0 unless --strict is set, in which case a
malformed run exits with status 2.`,
		Example: `  printf 'R1C\nCR1\n' | redwire calc
  redwire calc lines.txt --format json
  redwire calc lines.txt --summary`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			if !cmd.Flags().Changed("format") {
				opts.format = cfg.Output.Format
			}
			if !cmd.Flags().Changed("strict") {
				opts.strict = cfg.Output.Strict
			}
			return c.runCalc(cmd, inputPath(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", report.FormatText, "output format: text, json, yaml")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with status 2 when the run is malformed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports and recompute")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a per-line summary table to stderr")

	return cmd
}

func (c *CLI) runCalc(cmd *cobra.Command, path string, opts calcOptions) error {
	if err := errors.ValidateFormat(opts.format, report.Formats); err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	texts, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Run(ctx, texts, pipeline.Options{
		NoCache: opts.noCache,
		Refresh: opts.refresh,
	})
	if err != nil {
		return err
	}
	rep := res.Report
	logger.Debug("run finished", "state", rep.State, "final_tick", rep.FinalTick, "cached", res.CacheHit)

	out, diag := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if opts.format == report.FormatText {
		err = report.WriteText(out, diag, rep)
	} else {
		err = report.Write(out, rep, opts.format)
	}
	if err != nil {
		return err
	}

	if opts.summary {
		printSummary(diag, rep, res.CacheHit)
	}

	if opts.strict && !rep.Completed() {
		return &errors.MalformedRunError{
			FinalTick: rep.FinalTick,
			Arrived:   arrivedAt(rep, rep.FinalTick),
			Lines:     len(rep.Lines),
		}
	}
	return nil
}

// arrivedAt counts the lines that arrived at tick.
func arrivedAt(r *report.Report, tick int) int {
	n := 0
	for _, a := range r.Arrivals {
		if a.Tick == tick {
			n++
		}
	}
	return n
}

// inputPath returns the file argument, or "" for stdin.
func inputPath(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// readInput reads the input lines from path, or from the command's input
// stream when path is "" or "-".
func readInput(cmd *cobra.Command, path string) ([]string, error) {
	if path == "" || path == "-" {
		return report.ReadLines(cmd.InOrStdin())
	}
	return report.ReadFile(path)
}
