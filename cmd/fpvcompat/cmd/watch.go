package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corey/fpvcompat/internal/app"
	"github.com/corey/fpvcompat/internal/domain/compat"
)

var watchFlags runFlags

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [path ...]",
	Short: "Re-evaluate whenever an input changes",
	Long: "Runs compat once, then again each time an input file is written, created, " +
		"renamed or removed. Stops on Ctrl-C.",
	Args: cobra.ArbitraryArgs,
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	inputs, err := watchFlags.collect(args)
	if err != nil {
		return err
	}
	a, log, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	color := useColor()
	report := func(res *app.Result, err error) {
		switch {
		case errors.Is(err, app.ErrNoParts):
			fmt.Fprintln(cmd.ErrOrStderr(), noPartsMsg)
		case err != nil:
			log.Error("run failed", zap.Error(err))
		default:
			fmt.Fprintf(out, "%s %d parts, %d edges\n",
				palette(color).paint(colorBold, res.ID), res.Parts.Len(), res.Results.EdgeCount())
			if watchFlags.printSummary {
				writeSummary(out, compat.Summarize(res.Results), color)
			}
		}
	}

	if err := a.Watch(ctx, inputs, watchFlags.out, report); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
