package backtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/indicator"
	"go.uber.org/zap"
)

const (
	// minBars is the minimum raw history for a meaningful backtest.
	minBars = 60
	// minWarmBars is the minimum usable history after indicator warm-up.
	minWarmBars = 20
)

// BarProvider fetches daily price history for a symbol.
type BarProvider interface {
	FetchDaily(symbol string, lookbackDays int) ([]core.PriceBar, error)
}

// Backtester runs walk-forward strategy backtests against historical data.
// Each run reads only its own bar series and builds its own trade list, so
// concurrent runs share no mutable state.
type Backtester struct {
	provider BarProvider
	logger   *zap.Logger
}

// New creates a new Backtester with the given bar provider.
func New(provider BarProvider, logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		provider: provider,
		logger:   logger,
	}
}

// Run backtests a single strategy for a ticker. Insufficient history is
// reported as core.ErrInsufficientData, never a panic; degenerate pricing
// inputs are absorbed by the pricing model's intrinsic-value fallback.
func (b *Backtester) Run(ctx context.Context, ticker string, strat Strategy, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if strat == EntryExitSignals {
		return b.runEntryExit(ctx, ticker, opts)
	}
	if _, ok := rules[strat]; !ok {
		return nil, core.WrapError(core.ErrUnknownStrategy, fmt.Errorf("%q", strat))
	}

	b.logger.Info("backtesting strategy",
		zap.String("ticker", ticker),
		zap.String("strategy", string(strat)),
		zap.Int("lookback_days", opts.LookbackDays),
	)

	rows, err := b.prepare(ctx, ticker, strat, opts)
	if err != nil {
		return nil, err
	}

	trades, totalSignals := simulateOptionStrategy(rows, strat, opts)
	note := "Simulated via Black-Scholes (estimated premiums, ~70-80% accuracy vs real)"
	res := aggregate(trades, ticker, strat, periodLabel(rows), totalSignals, note)

	b.logger.Info("backtest complete",
		zap.String("ticker", ticker),
		zap.String("strategy", string(strat)),
		zap.Int("signals", res.TotalSignals),
		zap.Int("trades", res.TradesTaken),
	)
	return res, nil
}

// runEntryExit backtests the RSI/VWAP/EMA crossover swing strategy.
func (b *Backtester) runEntryExit(ctx context.Context, ticker string, opts Options) (*Result, error) {
	b.logger.Info("backtesting entry/exit signals",
		zap.String("ticker", ticker),
		zap.Int("lookback_days", opts.LookbackDays),
	)

	rows, err := b.prepare(ctx, ticker, EntryExitSignals, opts)
	if err != nil {
		return nil, err
	}

	trades := simulateEntryExit(rows, opts)
	note := "Walk-forward backtest of RSI/VWAP/EMA crossover signals"
	res := aggregate(trades, ticker, EntryExitSignals, periodLabel(rows), len(trades), note)
	if res.TradesTaken == 0 {
		res.Note = "No entry signals triggered during lookback period"
	}

	b.logger.Info("backtest complete",
		zap.String("ticker", ticker),
		zap.String("strategy", string(EntryExitSignals)),
		zap.Int("trades", res.TradesTaken),
	)
	return res, nil
}

// RunAll backtests every strategy variant for a ticker concurrently. Each
// run owns its own series copy, so no locking is needed beyond collecting
// the results. A failed run is logged and reported in its slot as nil.
func (b *Backtester) RunAll(ctx context.Context, ticker string, opts Options) []*Result {
	strategies := AllStrategies()
	results := make([]*Result, len(strategies))

	var wg sync.WaitGroup
	for i, strat := range strategies {
		wg.Add(1)
		go func(i int, strat Strategy) {
			defer wg.Done()
			res, err := b.Run(ctx, ticker, strat, opts)
			if err != nil {
				b.logger.Warn("backtest failed",
					zap.String("ticker", ticker),
					zap.String("strategy", string(strat)),
					zap.Error(err),
				)
				return
			}
			results[i] = res
		}(i, strat)
	}
	wg.Wait()

	return results
}

// prepare fetches bars, computes the indicator table, drops warm-up rows
// and trims to the lookback window.
func (b *Backtester) prepare(ctx context.Context, ticker string, strat Strategy, opts Options) ([]indicator.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := b.provider.FetchDaily(ticker, opts.LookbackDays)
	if err != nil {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("fetching %s: %w", ticker, err))
	}
	if len(bars) < minBars {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: %d bars, need at least %d", ticker, len(bars), minBars))
	}

	rows := warmup(indicator.Compute(bars), strat)
	if len(rows) < minWarmBars {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: %d bars after indicator warm-up, need at least %d", ticker, len(rows), minWarmBars))
	}

	if len(rows) > opts.LookbackDays {
		rows = rows[len(rows)-opts.LookbackDays:]
	}
	return rows, nil
}

func periodLabel(rows []indicator.Row) string {
	if len(rows) == 0 {
		return ""
	}
	const layout = "2006-01-02"
	return fmt.Sprintf("%s to %s",
		rows[0].Date.Format(layout),
		rows[len(rows)-1].Date.Format(layout))
}
