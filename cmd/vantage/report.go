package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantagelabs/vantage/internal/logger"
)

var reportDeliver bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the pipeline once and print the report",
	Long: `Run one full pipeline pass over the configured watchlist and print the
plain-text report. The HTML report is archived; delivery to notifiers is
opt-in via --deliver.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportDeliver, "deliver", false, "also deliver the report to configured notifiers")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.CLI()
	if debug {
		log = logger.Must(true)
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if len(cfg.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty; add tickers to the config file")
	}

	if !reportDeliver {
		// One-shot runs print to the terminal; drop the notifiers so the
		// report is not mailed out as a side effect.
		cfg.Notifiers = nil
	}

	a, _, _, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	rep, err := a.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Print(rep.RenderText())
	if rep.Failures() > 0 {
		fmt.Printf("\n%d of %d tickers failed\n", rep.Failures(), len(rep.Tickers))
	}
	return nil
}
