package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/vantagelabs/vantage/internal/backtest"
	"github.com/vantagelabs/vantage/internal/collector"
	"github.com/vantagelabs/vantage/internal/collector/yahoo"
	"github.com/vantagelabs/vantage/internal/logger"
)

var (
	backtestSymbol   string
	backtestLookback int
	backtestDTE      int
	backtestMaxHold  int
	backtestRate     float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Backtest a strategy for one symbol",
	Long: `Backtest a single strategy against historical daily bars and print
performance statistics. Pass "all" to run every strategy variant.

Strategies: COVERED_CALL, CASH_SECURED_PUT, BULL_CALL_SPREAD,
BEAR_CALL_SPREAD, IRON_CONDOR, PROTECTIVE_PUT, LONG_STRADDLE,
ENTRY_EXIT_SIGNALS, all`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().IntVar(&backtestLookback, "lookback", 252, "Lookback window in trading days")
	backtestCmd.Flags().IntVar(&backtestDTE, "dte", 30, "Target days to expiry")
	backtestCmd.Flags().IntVar(&backtestMaxHold, "max-hold", 30, "Maximum holding days")
	backtestCmd.Flags().Float64Var(&backtestRate, "rate", 0.05, "Risk-free rate")

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.CLI()
	defer log.Sync()

	y := yahoo.New()
	if err := y.Init(collector.Config{Enabled: true}); err != nil {
		return err
	}

	bt := backtest.New(y, log)
	opts := backtest.Options{
		LookbackDays: backtestLookback,
		TargetDTE:    backtestDTE,
		MaxHoldDays:  backtestMaxHold,
		RiskFreeRate: backtestRate,
	}

	fmt.Printf("=== Vantage Backtest: %s ===\n\n", backtestSymbol)

	if args[0] == "all" {
		results := bt.RunAll(cmd.Context(), backtestSymbol, opts)
		for i, res := range results {
			if res == nil {
				fmt.Printf("%-20s failed\n", backtest.AllStrategies()[i])
				continue
			}
			printResult(res)
		}
		return nil
	}

	strat, err := backtest.ParseStrategy(args[0])
	if err != nil {
		return err
	}
	res, err := bt.Run(cmd.Context(), backtestSymbol, strat, opts)
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res *backtest.Result) {
	fmt.Printf("%s  (%s)\n", res.Strategy, res.Period)
	fmt.Printf("  signals %d  trades %d  wins %d  losses %d\n",
		res.TotalSignals, res.TradesTaken, res.Wins, res.Losses)
	fmt.Printf("  win rate %.0f%%  avg return %.1f%%  max drawdown %.1f%%\n",
		res.WinRate*100, res.AvgReturnPct, res.MaxDrawdownPct)
	if math.IsInf(res.ProfitFactor, 1) {
		fmt.Printf("  profit factor ∞  avg hold %.1fd\n", res.AvgHoldingDays)
	} else {
		fmt.Printf("  profit factor %.2f  avg hold %.1fd\n", res.ProfitFactor, res.AvgHoldingDays)
	}
	if res.Note != "" {
		fmt.Printf("  note: %s\n", res.Note)
	}
	fmt.Println()
}
