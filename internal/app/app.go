package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vantagelabs/vantage/internal/backtest"
	"github.com/vantagelabs/vantage/internal/collector"
	"github.com/vantagelabs/vantage/internal/config"
	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/llm"
	"github.com/vantagelabs/vantage/internal/metrics"
	"github.com/vantagelabs/vantage/internal/notifier"
	"github.com/vantagelabs/vantage/internal/report"
	"github.com/vantagelabs/vantage/internal/signal"
	"github.com/vantagelabs/vantage/internal/storage/archive"
)

// App orchestrates the daily analysis pipeline: fetch history for each
// watchlist ticker, evaluate the swing rules, backtest every strategy
// variant, optionally narrate the findings, then render, deliver and
// archive the report.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	notifiers  *notifier.Registry
	llm        llm.Provider
	reports    *archive.Reports
	metrics    *metrics.Registry

	interval time.Duration

	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
	lastReport *report.Report
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		collectors: collector.NewRegistry(),
		notifiers:  notifier.NewRegistry(),
		interval:   24 * time.Hour,
	}
}

// RegisterCollector adds a market data collector to the app
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// RegisterNotifier adds a report delivery channel to the app
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

// SetLLM sets the optional narration provider.
func (a *App) SetLLM(p llm.Provider) {
	a.llm = p
}

// SetArchive sets the optional report archive.
func (a *App) SetArchive(r *archive.Reports) {
	a.reports = r
}

// SetMetrics sets the optional metrics registry.
func (a *App) SetMetrics(m *metrics.Registry) {
	a.metrics = m
}

// SetInterval sets the pipeline interval
func (a *App) SetInterval(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// LastReport returns the most recently completed report, or nil.
func (a *App) LastReport() *report.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastReport
}

// Running reports whether the periodic loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Start begins the periodic pipeline loop
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	a.logger.Info("vantage starting",
		zap.Int("watchlist_count", len(a.cfg.Watchlist)),
		zap.Duration("interval", a.interval),
	)

	// Initial run
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("pipeline run failed", zap.Error(err))
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("vantage shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.logger.Error("pipeline run failed", zap.Error(err))
			}
		}
	}
}

// Stop stops the periodic loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// RunOnce executes one full pipeline run and returns the report. A ticker
// that fails is recorded as a failed section; the run itself only errors
// when nothing can run at all.
func (a *App) RunOnce(ctx context.Context) (*report.Report, error) {
	if len(a.collectors.GetAll()) == 0 {
		return nil, fmt.Errorf("no collectors registered")
	}
	if len(a.cfg.Watchlist) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}

	start := time.Now()
	rep := report.New(uuid.NewString(), start)

	a.logger.Info("pipeline run starting",
		zap.String("run_id", rep.ID),
		zap.Int("tickers", len(a.cfg.Watchlist)),
	)

	for _, item := range a.cfg.Watchlist {
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		rep.Add(a.analyzeTicker(ctx, item))
	}

	if err := a.publish(ctx, rep); err != nil {
		a.logger.Error("report publication failed", zap.Error(err))
	}

	a.mu.Lock()
	a.lastReport = rep
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.RecordPipelineRun(time.Since(start).Seconds())
		a.metrics.SetWatchlistSize(len(a.cfg.Watchlist))
	}

	a.logger.Info("pipeline run complete",
		zap.String("run_id", rep.ID),
		zap.Int("tickers", len(rep.Tickers)),
		zap.Int("failures", rep.Failures()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

// analyzeTicker produces the report section for one watchlist entry.
func (a *App) analyzeTicker(ctx context.Context, item config.WatchlistItem) report.TickerSection {
	sec := report.TickerSection{Symbol: item.Symbol, Name: item.Name}

	opts := backtest.Options{
		LookbackDays: a.cfg.Backtest.LookbackDays,
		TargetDTE:    a.cfg.Backtest.TargetDTE,
		MaxHoldDays:  a.cfg.Backtest.MaxHoldDays,
		RiskFreeRate: a.cfg.Backtest.RiskFreeRate,
	}

	bars, err := a.fetchBars(item.Symbol, opts.LookbackDays)
	if err != nil {
		a.logger.Warn("fetch failed",
			zap.String("symbol", item.Symbol),
			zap.Error(err),
		)
		sec.Err = err.Error()
		if a.metrics != nil {
			a.metrics.RecordTicker("error")
		}
		return sec
	}

	snap, err := signal.FromBars(item.Symbol, bars)
	if err != nil {
		sec.Err = err.Error()
		if a.metrics != nil {
			a.metrics.RecordTicker("error")
		}
		return sec
	}
	sec.Snapshot = snap

	// Backtests re-read the series per strategy, so serve them from the
	// bars already fetched instead of hitting the collector eight times.
	bt := backtest.New(cachedBars(bars), a.logger)
	btStart := time.Now()
	sec.Backtests = bt.RunAll(ctx, item.Symbol, opts)

	if a.metrics != nil {
		elapsed := time.Since(btStart).Seconds()
		for i, res := range sec.Backtests {
			strat := string(backtest.AllStrategies()[i])
			if res == nil {
				a.metrics.RecordBacktest(strat, "error", elapsed)
			} else {
				a.metrics.RecordBacktest(strat, "ok", elapsed)
			}
		}
		a.metrics.RecordTicker("ok")
		if snap.Entry {
			a.metrics.RecordSignal(item.Symbol)
		}
	}

	if a.llm != nil {
		sec.Narrative = a.narrate(ctx, sec)
	}
	return sec
}

// fetchBars tries each registered collector in turn until one returns data.
func (a *App) fetchBars(symbol string, lookbackDays int) ([]core.PriceBar, error) {
	var lastErr error
	for _, c := range a.collectors.GetAll() {
		bars, err := c.FetchDaily(symbol, lookbackDays)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = core.WrapError(core.ErrNoData, fmt.Errorf("no collector returned bars for %s", symbol))
	}
	return nil, lastErr
}

// narrate asks the LLM for a short commentary on the section. Narration is
// best-effort: a failure is logged and the section ships without it.
func (a *App) narrate(ctx context.Context, sec report.TickerSection) string {
	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: "You are an options analyst. Summarize backtest results for a trader in 2-3 sentences. Be factual; no advice.",
		Messages:     []llm.Message{{Role: "user", Content: narrativePrompt(sec)}},
		MaxTokens:    512,
	})
	if err != nil {
		a.logger.Warn("narration failed",
			zap.String("symbol", sec.Symbol),
			zap.Error(err),
		)
		return ""
	}
	if a.metrics != nil {
		a.metrics.AddLLMTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	return strings.TrimSpace(resp.Content)
}

// narrativePrompt summarizes the section as plain text for the LLM.
func narrativePrompt(sec report.TickerSection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticker %s.\n", sec.Symbol)
	if s := sec.Snapshot; s != nil {
		fmt.Fprintf(&sb, "Close %.2f, RSI14 %.1f, VWAP20 %.2f, HV20 %.2f.\n",
			s.Price, s.RSI14, s.VWAP, s.HistVol)
		switch {
		case s.Entry:
			sb.WriteString("Swing entry signal active today.\n")
		case s.Exit:
			sb.WriteString("Swing exit signal active today.\n")
		}
	}
	sb.WriteString("Backtest results over the lookback period:\n")
	for _, b := range sec.Backtests {
		if b == nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %d trades, win rate %.0f%%, avg return %.1f%%\n",
			b.Strategy, b.TradesTaken, b.WinRate*100, b.AvgReturnPct)
	}
	return sb.String()
}

// publish renders the report, delivers it to every notifier and archives it.
func (a *App) publish(ctx context.Context, rep *report.Report) error {
	html, err := rep.RenderHTML()
	if err != nil {
		return err
	}

	for name, derr := range a.notifiers.DeliverAll(ctx, rep.Subject(), html) {
		status := "ok"
		if derr != nil {
			status = "error"
			a.logger.Error("delivery failed",
				zap.String("notifier", name),
				zap.Error(derr),
			)
		}
		if a.metrics != nil {
			a.metrics.RecordDelivery(name, status)
		}
	}

	if a.reports != nil {
		path, err := a.reports.Save(ctx, rep.Date, []byte(html))
		if err != nil {
			return err
		}
		a.logger.Info("report archived", zap.String("path", path))
	}
	return nil
}

// cachedBars adapts an already-fetched series to the backtest bar provider.
type cachedBars []core.PriceBar

func (c cachedBars) FetchDaily(symbol string, lookbackDays int) ([]core.PriceBar, error) {
	return c, nil
}
