package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/maintsched/app"
	"github.com/kilianp07/maintsched/pkg/export"
)

var (
	solveFormat    string
	solveOutput    string
	solveWorkers   int
	solveTimeLimit int
	solveVerify    bool
	solveEvaluate  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <instance.json>",
	Short: "Build and solve a maintenance instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveFormat, "format", "f", "", "report format: json, csv, yaml, solution")
	f.StringVarP(&solveOutput, "output", "o", "", "output file (default stdout)")
	f.IntVar(&solveWorkers, "workers", 0, "number of portfolio search workers")
	f.IntVar(&solveTimeLimit, "time-limit", 0, "solver time limit in milliseconds")
	f.BoolVar(&solveVerify, "verify", true, "re-check the schedule after solving")
	f.BoolVar(&solveEvaluate, "evaluate", true, "score the schedule against risk scenarios")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		cfg.Report.Format = solveFormat
	}
	if cmd.Flags().Changed("output") {
		cfg.Report.Path = solveOutput
	}
	if cmd.Flags().Changed("workers") {
		cfg.Solver.Workers = solveWorkers
	}
	if cmd.Flags().Changed("time-limit") {
		cfg.Solver.TimeLimitMS = solveTimeLimit
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	svc, closeFn, err := newService(cfg, cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	svc.ServeMetrics(ctx)

	rep, err := svc.Solve(ctx, args[0], app.RunOptions{Verify: solveVerify, Evaluate: solveEvaluate})
	if err != nil {
		return err
	}
	if err := writeReport(cmd.OutOrStdout(), cfg.Report.Path, cfg.Report.Format, rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if len(rep.Violations) > 0 {
		return fmt.Errorf("schedule has %d violations", len(rep.Violations))
	}
	return nil
}

func writeReport(stdout io.Writer, path, format string, rep export.Report) (err error) {
	w := stdout
	if path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return export.Write(w, format, rep)
}
