package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/redwire/pkg/pipeline"
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/report"
	"github.com/matzehuels/redwire/pkg/sched"
)

// stepCommand creates the step command, an interactive tick-by-tick view of
// a run.
func (c *CLI) stepCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "step [file]",
		Short: "Walk through a simulation tick by tick",
		Long: `Walk through a simulation tick by tick.

Every processed tick is shown with the updates it held and what happened to
each: consumed an element and moved to a later tick, arrived, or was dropped
because its next element is invalid. Use --plain to print all ticks without
the interactive view.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStep(cmd, inputPath(args), plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print every tick and exit")

	return cmd
}

func (c *CLI) runStep(cmd *cobra.Command, input string, plain bool) error {
	ctx := cmd.Context()

	texts, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	var steps []sched.Step
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Run(ctx, texts, pipeline.Options{
		NoCache:  true,
		Observer: func(s sched.Step) { steps = append(steps, s) },
	})
	if err != nil {
		return err
	}

	if plain {
		return writeSteps(cmd.OutOrStdout(), steps, res.Report)
	}

	p := tea.NewProgram(newStepModel(steps, res.Report),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// writeSteps prints every step followed by the outcome.
func writeSteps(w io.Writer, steps []sched.Step, rep *report.Report) error {
	for i, s := range steps {
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", stepHeader(s, i, len(steps)), stepTable(s)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, outcome(rep))
	return err
}

// =============================================================================
// stepModel - Interactive tick stepper
// =============================================================================

// stepModel is the bubbletea model for the tick stepper.
type stepModel struct {
	steps  []sched.Step
	report *report.Report
	cursor int
}

func newStepModel(steps []sched.Step, rep *report.Report) stepModel {
	return stepModel{steps: steps, report: rep}
}

func (m stepModel) Init() tea.Cmd {
	return nil
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ":
			if m.cursor < len(m.steps)-1 {
				m.cursor++
			}
		case "left", "h", "p":
			if m.cursor > 0 {
				m.cursor--
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			if len(m.steps) > 0 {
				m.cursor = len(m.steps) - 1
			}
		}
	}
	return m, nil
}

func (m stepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Redstone Stepper"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.steps) == 0 {
		b.WriteString(StyleDim.Render("No ticks were processed."))
		b.WriteString("\n")
		return b.String()
	}

	s := m.steps[m.cursor]
	b.WriteString(stepHeader(s, m.cursor, len(m.steps)))
	b.WriteString("\n")
	b.WriteString(stepTable(s))
	b.WriteString("\n\n")
	if m.cursor == len(m.steps)-1 {
		b.WriteString(outcome(m.report))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Step Rendering
// =============================================================================

func stepHeader(s sched.Step, i, n int) string {
	return StyleTitle.Render(fmt.Sprintf("Tick %d", s.Tick)) +
		StyleDim.Render(fmt.Sprintf("  step %d/%d · %d ticks pending", i+1, n, s.Pending))
}

// stepRow is one processed update and what became of it.
type stepRow struct {
	line   string
	tail   string
	action string
	style  lipgloss.Style
}

func stepRows(s sched.Step) []stepRow {
	scheduled := make(map[redstone.LineID]sched.Scheduled, len(s.Scheduled))
	for _, sc := range s.Scheduled {
		scheduled[sc.Update.Line] = sc
	}
	dropped := make(map[redstone.LineID]sched.Warning, len(s.Dropped))
	for _, w := range s.Dropped {
		dropped[w.Line] = w
	}

	rows := make([]stepRow, 0, len(s.Processed))
	for _, u := range s.Processed {
		row := stepRow{line: u.Line.Name(), tail: u.Tail.String()}
		if row.tail == "" {
			row.tail = "-"
		}
		if sc, ok := scheduled[u.Line]; ok {
			row.action = fmt.Sprintf("%s +%d → tick %d", sc.Element, sc.Element.Ticks(), sc.At)
			row.style = StyleValue
		} else if w, ok := dropped[u.Line]; ok {
			row.action = "dropped: invalid " + w.Remaining
			row.style = StyleError
		} else {
			row.action = "arrived"
			row.style = StyleSuccess
		}
		rows = append(rows, row)
	}
	return rows
}

func stepTable(s sched.Step) string {
	rows := stepRows(s)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.line, r.tail, r.action}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Line", "Remaining", "Action").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			if col == 2 {
				return rows[row].style
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func outcome(r *report.Report) string {
	if r.Completed() {
		return StyleSuccess.Render(fmt.Sprintf("%s Completed at tick %d: %s", iconSuccess, r.FinalTick, orderString(r)))
	}
	return StyleWarning.Render(fmt.Sprintf("%s Malformed at tick %d", iconWarning, r.FinalTick))
}
