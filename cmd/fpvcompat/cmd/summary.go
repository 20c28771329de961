package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/fpvcompat/internal/adapters/bbolt"
	"github.com/corey/fpvcompat/internal/app"
	"github.com/corey/fpvcompat/internal/domain/compat"
)

var (
	summarySnapshot string
	summaryRun      string
	summaryList     bool
	summaryJSON     bool
	summaryInputs   []string
	summaryHeadroom float64
	summaryPassOnly bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [flags] [path ...]",
	Short: "Show PASS/FAIL/UNK counts per pair",
	Long: "Summarizes a stored run (--snapshot) or evaluates inputs on the fly. " +
		"--list shows the runs stored in a snapshot database.",
	Args: cobra.ArbitraryArgs,
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVarP(&summarySnapshot, "snapshot", "s", "", "Snapshot database written by --format bolt")
	f.StringVar(&summaryRun, "run", "", "Run ID inside the snapshot (default: latest)")
	f.BoolVar(&summaryList, "list", false, "List stored runs instead of summarizing")
	f.BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	f.StringArrayVarP(&summaryInputs, "in", "i", nil, "Input file, directory or glob (repeatable)")
	f.Float64VarP(&summaryHeadroom, "headroom", "H", compat.DefaultHeadroom, "ESC↔motor strict headroom factor")
	f.BoolVar(&summaryPassOnly, "pass-only", false, "Keep only PASS rows")
}

func runSummary(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if summarySnapshot != "" {
		if summaryList {
			runs, err := app.ListSnapshots(summarySnapshot)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			writeRuns(out, runs, useColor())
			return nil
		}
		run, err := app.LoadSnapshot(summarySnapshot, summaryRun)
		if errors.Is(err, bbolt.ErrNoSnapshot) {
			return usageError("summary: %v", err)
		}
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		return printSummary(cmd, compat.Summarize(run.Results))
	}

	if summaryList {
		return usageError("--list requires --snapshot")
	}
	inputs := append(append([]string{}, summaryInputs...), args...)
	if len(inputs) == 0 {
		return usageError("no inputs: pass --snapshot, --in <path> or a path argument")
	}
	a, log, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	res, err := a.Evaluate(inputs)
	if err != nil {
		return runError(err)
	}
	return printSummary(cmd, compat.Summarize(res.Results))
}

func printSummary(cmd *cobra.Command, rows []compat.PairSummary) error {
	out := cmd.OutOrStdout()
	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	writeSummary(out, rows, useColor())
	return nil
}
