package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Vantage - options strategy backtesting and daily watchlist reports",
	Long: `Vantage analyzes a watchlist of equities: it evaluates swing entry/exit
rules, backtests option strategies with Black-Scholes premium estimates,
and delivers a daily HTML report.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
