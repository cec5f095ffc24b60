package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/slayermass/stateform/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string   // empty means the latest run
	Kinds    []string // optional - filter to event kinds
	List     bool     // list runs instead of printing one
	Scenario string   // filter for --list
}

// TraceEvent is a single journaled event in the timeline.
type TraceEvent struct {
	Seq     int64           `json:"seq"`
	Kind    string          `json:"kind"`
	Path    string          `json:"path"`
	Payload json.RawMessage `json:"payload"`
}

// TraceStats holds summary statistics for the run.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Steps       int `json:"steps"`
	Changes     int `json:"changes"`
	Errors      int `json:"errors"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      journal.Run  `json:"run"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print a journaled scenario run",
		Long: `Print the event timeline of a scenario run recorded with test --db.

The timeline interleaves scenario steps with the change and error events
the engine emitted for them, in emission order.

Examples:
  stateform trace --db runs.db
  stateform trace --db runs.db --run 0190c1d2-...
  stateform trace --db runs.db --kind error --format json
  stateform trace --db runs.db --list --scenario "contact list"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id (defaults to the latest run)")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kind", nil, "filter to event kinds (step, change, error)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "filter --list by scenario name")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if _, err := os.Stat(opts.Database); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", opts.Database))
	}
	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.List {
		runs, err := j.Runs(ctx, opts.Scenario)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		return outputRuns(cmd, opts.Format, runs)
	}

	run, err := selectRun(ctx, j, opts.RunID)
	if errors.Is(err, journal.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, ErrCodeJournal, err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	events, err := j.Events(ctx, run.ID, opts.Kinds...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := TraceResult{Run: run, Timeline: buildTimeline(events)}
	result.Stats = buildStats(result.Timeline)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}
	return outputTraceText(cmd.OutOrStdout(), result)
}

func selectRun(ctx context.Context, j *journal.Journal, id string) (journal.Run, error) {
	if id == "" {
		return j.Latest(ctx)
	}
	return j.Run(ctx, id)
}

func buildTimeline(events []journal.Event) []TraceEvent {
	timeline := make([]TraceEvent, 0, len(events))
	for _, ev := range events {
		payload := ev.Payload
		if len(payload) == 0 {
			payload = []byte("null")
		}
		timeline = append(timeline, TraceEvent{
			Seq:     ev.Seq,
			Kind:    ev.Kind,
			Path:    ev.Path,
			Payload: json.RawMessage(payload),
		})
	}
	return timeline
}

func buildStats(timeline []TraceEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(timeline)}
	for _, ev := range timeline {
		switch ev.Kind {
		case "step":
			stats.Steps++
		case "change":
			stats.Changes++
		case "error":
			stats.Errors++
		}
	}
	return stats
}

func outputTraceText(w io.Writer, result TraceResult) error {
	fmt.Fprintf(w, "Trace for run: %s (%s)\n", result.Run.ID, result.Run.Scenario)
	fmt.Fprintf(w, "Status: %s\n", runStatus(result.Run))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %-6s %-20s %s\n", ev.Seq, strings.ToUpper(ev.Kind), displayPath(ev.Path), ev.Payload)
	}
	fmt.Fprintln(w)

	if len(result.Run.Errors) > 0 {
		fmt.Fprintln(w, "=== Failures ===")
		for _, e := range result.Run.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Steps:        %d\n", result.Stats.Steps)
	fmt.Fprintf(w, "  Changes:      %d\n", result.Stats.Changes)
	fmt.Fprintf(w, "  Errors:       %d\n", result.Stats.Errors)
	return nil
}

func outputRuns(cmd *cobra.Command, format string, runs []journal.Run) error {
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-4s  %3d event(s)  %s\n", r.ID, runStatus(r), r.Events, r.Scenario)
	}
	return nil
}

// displayPath shows the form-wide key as "(form)".
func displayPath(p string) string {
	if p == "" {
		return "(form)"
	}
	return p
}

func runStatus(r journal.Run) string {
	switch {
	case !r.Finished:
		return "OPEN"
	case r.Pass:
		return "PASS"
	default:
		return "FAIL"
	}
}
