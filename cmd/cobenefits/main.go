package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/cobenefits/internal/config"
	"github.com/stwalsh4118/cobenefits/internal/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cobenefits",
	Short: "UK climate co-benefits atlas",
	Long: `Loads the small-area co-benefit tables and serves the dashboard
aggregations: KPIs, forecast trend, local authority rankings, benefit
correlations, head-to-head comparisons and damage-type breakdowns.

Configuration is read from the environment (DATA_DIR, DATA_SOURCE, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		// stdout belongs to report output; logs go to stderr
		log = logger.NewWithWriter(os.Stderr, cfg.Server.Env, cfg.Log.Level)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
