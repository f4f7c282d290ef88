package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/maintsched/app"
	"github.com/kilianp07/maintsched/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "maintsched",
	Short:         "Grid maintenance scheduling solver",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newService(cfg *config.Config, cmd *cobra.Command) (*app.Service, func(), error) {
	svc, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := svc.Close(); err != nil {
			if _, ferr := fmt.Fprintf(cmd.ErrOrStderr(), "error while closing service: %v\n", err); ferr != nil {
				fmt.Println("failed to write to stderr:", ferr)
			}
		}
	}
	return svc, closeFn, nil
}
