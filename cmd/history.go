package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/maintsched/core/runlog"
)

var (
	historyStatus   string
	historyInstance string
	historySince    time.Duration
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past solve runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyStatus, "status", "", "only runs with this status")
	f.StringVar(&historyInstance, "instance", "", "only runs of this instance")
	f.DurationVar(&historySince, "since", 0, "only runs started within this duration, e.g. 24h")
	f.IntVar(&historyLimit, "limit", 20, "maximum number of runs, most recent kept")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RunLog.Backend == runlog.BackendNone {
		return fmt.Errorf("run history is disabled (run_log.backend is none)")
	}
	cfg.MQTT.Enabled = false
	svc, closeFn, err := newService(cfg, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	q := runlog.RunQuery{Status: historyStatus, Instance: historyInstance, Limit: historyLimit}
	if historySince > 0 {
		q.Since = time.Now().Add(-historySince)
	}
	recs, err := svc.History(context.Background(), q)
	if err != nil {
		return fmt.Errorf("query history: %w", err)
	}
	return printHistory(cmd, recs)
}

func printHistory(cmd *cobra.Command, recs []runlog.RunRecord) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "STARTED\tINSTANCE\tSTATUS\tDURATION\tVIOLATIONS\tOBJECTIVE\tID"); err != nil {
		return err
	}
	for _, r := range recs {
		status := r.Status
		if r.Error != "" {
			status += " (" + r.Error + ")"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.4f\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Instance, status, r.Duration.Round(time.Millisecond),
			r.Violations, r.Objective, r.ID); err != nil {
			return err
		}
	}
	return tw.Flush()
}
