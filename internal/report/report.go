// Package report assembles per-ticker analysis into a daily report that can
// be rendered as HTML for email and archival, or as plain text for the CLI.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vantagelabs/vantage/internal/backtest"
	"github.com/vantagelabs/vantage/internal/signal"
)

// TickerSection holds everything the pipeline produced for one symbol.
// A section with a non-empty Err renders as a failure notice; the rest of
// the report is unaffected.
type TickerSection struct {
	Symbol    string
	Name      string
	Snapshot  *signal.Snapshot
	Backtests []*backtest.Result
	Narrative string
	Err       string
}

// Report is one full pipeline run over the watchlist.
type Report struct {
	ID        string
	Date      time.Time
	Generated time.Time
	Tickers   []TickerSection
}

// New creates an empty report for the given run.
func New(id string, date time.Time) *Report {
	return &Report{
		ID:        id,
		Date:      date,
		Generated: time.Now(),
	}
}

// Add appends a ticker section.
func (r *Report) Add(sec TickerSection) {
	r.Tickers = append(r.Tickers, sec)
}

// Subject returns the email subject line for this report.
func (r *Report) Subject() string {
	return fmt.Sprintf("Vantage Daily Report — %s", r.Date.Format("2006-01-02"))
}

// Filename returns the canonical archive filename.
func (r *Report) Filename() string {
	return fmt.Sprintf("vantage-%s.html", r.Date.Format("2006-01-02"))
}

// Failures counts ticker sections that errored.
func (r *Report) Failures() int {
	n := 0
	for _, t := range r.Tickers {
		if t.Err != "" {
			n++
		}
	}
	return n
}

// fmtRatio renders profit factors, where +Inf means "no losing trades".
func fmtRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// fmtMetric renders an indicator value, hiding warm-up NaNs.
func fmtMetric(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func signalLine(s *signal.Snapshot) string {
	switch {
	case s == nil:
		return ""
	case s.Entry:
		return "ENTRY: " + strings.Join(s.EntryReasons, "; ")
	case s.Exit:
		return "EXIT: " + strings.Join(s.ExitReasons, "; ")
	default:
		return "No actionable signal"
	}
}
