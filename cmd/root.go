package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/haulage/app"
	"github.com/kilianp07/haulage/config"
	"github.com/kilianp07/haulage/core/instance"
)

var (
	cfgPath      string
	instancePath string
	seed         int64
)

var rootCmd = &cobra.Command{
	Use:           "haulage",
	Short:         "Pickup and delivery planning and task auctions",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&instancePath, "instance", "i", "instance.yaml", "instance file (yaml or json)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed, overrides search.seed when non-zero")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// newService loads the configuration and the instance named by the
// persistent flags.
func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if seed != 0 {
		cfg.Search.Seed = seed
	}
	inst, err := instance.Load(instancePath)
	if err != nil {
		return nil, fmt.Errorf("load instance: %w", err)
	}
	built, err := inst.Build()
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", instancePath, err)
	}
	return app.New(cfg, built)
}
