package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/corey/fpvcompat/internal/app"
	"github.com/corey/fpvcompat/internal/domain/compat"
)

// noPartsMsg is printed when no input yields a record.
const noPartsMsg = "No parts loaded. Check --in path(s) and format (CSV/JSON/YAML)."

// runFlags are shared by compat and watch.
type runFlags struct {
	inputs       []string
	out          string
	format       string
	merge        bool
	passOnly     bool
	printSummary bool
	headroom     float64
	metricsFile  string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.inputs, "in", "i", nil, "Input file, directory or glob (repeatable)")
	fs.StringVarP(&f.out, "out", "o", "", "Output directory or file; omitted prints the summary only")
	fs.StringVarP(&f.format, "format", "f", "", "Output format: csv, json, bolt (default: inferred from --out)")
	fs.BoolVar(&f.merge, "merge", false, "Write one merged table with a pair_type column")
	fs.BoolVar(&f.passOnly, "pass-only", false, "Keep only PASS rows")
	fs.BoolVar(&f.printSummary, "print-summary", false, "Print PASS/FAIL/UNK counts per pair")
	fs.Float64VarP(&f.headroom, "headroom", "H", compat.DefaultHeadroom, "ESC↔motor strict headroom factor")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
}

// collect returns --in values followed by positional paths.
func (f *runFlags) collect(args []string) ([]string, error) {
	inputs := append(append([]string{}, f.inputs...), args...)
	if len(inputs) == 0 {
		return nil, usageError("no inputs: pass --in <path> or a path argument")
	}
	return inputs, nil
}

var compatFlags runFlags

var compatCmd = &cobra.Command{
	Use:   "compat [flags] [path ...]",
	Short: "Evaluate compatibility across part catalogs",
	Long: "Loads every input, normalizes the records, evaluates every rule and writes one " +
		"table per pair. Directories load their *.csv, *.json, *.yaml and *.yml files.",
	Args: cobra.ArbitraryArgs,
	RunE: runCompat,
}

func init() {
	compatFlags.register(compatCmd.Flags())
}

func runCompat(cmd *cobra.Command, args []string) error {
	inputs, err := compatFlags.collect(args)
	if err != nil {
		return err
	}
	a, log, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	res, err := a.Run(inputs, compatFlags.out)
	if err != nil {
		return runError(err)
	}

	if compatFlags.printSummary || compatFlags.out == "" {
		writeSummary(cmd.OutOrStdout(), compat.Summarize(res.Results), useColor())
	}
	return nil
}

// runError maps an evaluation failure onto its exit code.
func runError(err error) error {
	if errors.Is(err, app.ErrNoParts) {
		return exitErr{code: exitUsage, msg: noPartsMsg}
	}
	return fmt.Errorf("compat: %w", err)
}
