package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <instance.json>",
	Short: "Check an instance and print the size of its model",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.RunLog.Backend = "none"
	svc, closeFn, err := newService(cfg, cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	stats, err := svc.Validate(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, err = fmt.Fprintf(out, "interventions: %d\nvariables: %d\nconstraints: %d\nintervals: %d\nworkload contributions: %d\nexclusion windows: %d\n",
		stats.Interventions, stats.Variables, stats.Constraints, stats.Intervals, stats.Contributions, stats.Windows)
	return err
}
