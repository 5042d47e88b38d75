// Package signal evaluates the swing entry/exit rules against the most
// recent trading day, producing a human-readable snapshot for reports.
package signal

import (
	"fmt"
	"time"

	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/indicator"
)

// Snapshot captures the latest technical state of a ticker and whether the
// swing rules would enter or exit today. Reasons list only the clauses that
// actually hold, with their observed values.
type Snapshot struct {
	Ticker  string
	Date    time.Time
	Price   float64
	RSI14   float64
	EMA9    float64
	EMA20   float64
	SMA50   float64
	VWAP    float64
	ATR14   float64
	HistVol float64

	Entry        bool
	Exit         bool
	EntryReasons []string
	ExitReasons  []string
}

// Evaluate builds a snapshot from an indicator table. The table must hold at
// least two rows with RSI, EMAs and VWAP defined on the last row; otherwise
// ErrInsufficientData is returned.
func Evaluate(ticker string, rows []indicator.Row) (*Snapshot, error) {
	if len(rows) < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: %d indicator rows, need at least 2", ticker, len(rows)))
	}

	last := rows[len(rows)-1]
	prev := rows[len(rows)-2]

	if !indicator.Defined(last.RSI14) || !indicator.Defined(last.VWAP) ||
		!indicator.Defined(last.EMA9) || !indicator.Defined(last.EMA20) {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: indicators not warmed up on latest bar", ticker))
	}

	snap := &Snapshot{
		Ticker:  ticker,
		Date:    last.Date,
		Price:   last.Close,
		RSI14:   last.RSI14,
		EMA9:    last.EMA9,
		EMA20:   last.EMA20,
		SMA50:   last.SMA50,
		VWAP:    last.VWAP,
		ATR14:   last.ATR14,
		HistVol: last.HistVol,
	}

	crossedUp := indicator.Defined(prev.EMA9) && indicator.Defined(prev.EMA20) &&
		prev.EMA9 <= prev.EMA20 && last.EMA9 > last.EMA20
	crossedDown := indicator.Defined(prev.EMA9) && indicator.Defined(prev.EMA20) &&
		prev.EMA9 > prev.EMA20 && last.EMA9 < last.EMA20

	var entryHits []string
	if last.RSI14 < 35 {
		entryHits = append(entryHits, fmt.Sprintf("RSI oversold (%.1f < 35)", last.RSI14))
	}
	if last.Close < last.VWAP {
		entryHits = append(entryHits, fmt.Sprintf("price below VWAP (%.2f < %.2f)", last.Close, last.VWAP))
	}
	if crossedUp {
		entryHits = append(entryHits, "EMA9 crossed above EMA20")
	}
	if len(entryHits) == 3 {
		snap.Entry = true
		snap.EntryReasons = entryHits
	}

	var exitHits []string
	if last.RSI14 > 65 {
		exitHits = append(exitHits, fmt.Sprintf("RSI overbought (%.1f > 65)", last.RSI14))
	}
	if last.Close > last.VWAP {
		exitHits = append(exitHits, fmt.Sprintf("price above VWAP (%.2f > %.2f)", last.Close, last.VWAP))
	}
	if crossedDown {
		exitHits = append(exitHits, "EMA9 crossed below EMA20")
	}
	if len(exitHits) == 3 {
		snap.Exit = true
		snap.ExitReasons = exitHits
	}

	return snap, nil
}

// FromBars is a convenience wrapper that computes the indicator table first.
func FromBars(ticker string, bars []core.PriceBar) (*Snapshot, error) {
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s: empty bar series", ticker))
	}
	return Evaluate(ticker, indicator.Compute(bars))
}
