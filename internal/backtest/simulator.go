package backtest

import (
	"github.com/vantagelabs/vantage/internal/indicator"
)

const (
	// volSanityFloor rejects entry days whose volatility estimate would
	// make Black-Scholes repricing numerically meaningless.
	volSanityFloor = 0.05

	// fallbackVol stands in when a day's volatility estimate is undefined.
	fallbackVol = 0.30
)

// simulateOptionStrategy walks the indicator table one day at a time for a
// single option strategy. It opens at most one position, exits on calendar
// expiry or an RSI reversal against the strategy's bias, and converts each
// closed position into a trade record. A position still open when the
// series ends is discarded, not force-closed.
func simulateOptionStrategy(rows []indicator.Row, strat Strategy, opts Options) (trades []TradeRecord, totalSignals int) {
	r, ok := rules[strat]
	if !ok {
		return nil, 0
	}

	var open *position
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		prev := rows[i-1]

		if open == nil {
			if !r.entry(row, prev) {
				continue
			}
			totalSignals++

			sigma := row.HistVol
			if !indicator.Defined(sigma) {
				sigma = fallbackVol
			}
			if sigma <= volSanityFloor {
				continue
			}
			open = &position{
				entryIndex: i,
				entryPrice: row.Close,
				entryVol:   sigma,
			}
			continue
		}

		open.holdDays++

		exitReason := ""
		if reversalExit(r.bias, row) {
			exitReason = ExitReversal
		}
		if open.holdDays >= opts.TargetDTE {
			exitReason = ExitExpiry
		}
		if exitReason == "" {
			continue
		}

		pnl, pct := r.pnl(open.entryPrice, row.Close, open.entryVol, opts.TargetDTE, opts.RiskFreeRate)
		trades = append(trades, TradeRecord{
			EntryPrice:  open.entryPrice,
			ExitPrice:   row.Close,
			HoldingDays: open.holdDays,
			PnL:         pnl,
			PnLPct:      pct,
			ExitReason:  exitReason,
		})
		open = nil
	}

	return trades, totalSignals
}

// reversalExit reports whether RSI has swung hard against the position.
func reversalExit(b bias, row indicator.Row) bool {
	if !indicator.Defined(row.RSI14) {
		return false
	}
	switch b {
	case biasBullish:
		return row.RSI14 > 70
	case biasBearish:
		return row.RSI14 < 35
	default:
		return false
	}
}

// simulateEntryExit walks the table for the long-only swing strategy. Its
// P&L is the plain stock price difference, no option legs.
func simulateEntryExit(rows []indicator.Row, opts Options) []TradeRecord {
	var trades []TradeRecord
	var open *position

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		prev := rows[i-1]

		if open == nil {
			if entryExitEntry(row, prev) {
				open = &position{entryIndex: i, entryPrice: row.Close}
			}
			continue
		}

		open.holdDays++

		signaled := entryExitExit(row, prev)
		if !signaled && open.holdDays < opts.MaxHoldDays {
			continue
		}

		reason := ExitMaxHold
		if signaled {
			reason = ExitSignal
		}
		pnl := row.Close - open.entryPrice
		trades = append(trades, TradeRecord{
			EntryPrice:  open.entryPrice,
			ExitPrice:   row.Close,
			HoldingDays: open.holdDays,
			PnL:         pnl,
			PnLPct:      pnl / open.entryPrice * 100,
			ExitReason:  reason,
		})
		open = nil
	}

	return trades
}

// warmup filters rows whose fields required by the given strategy are still
// NaN, so the simulation never sees an undefined input it depends on.
func warmup(rows []indicator.Row, strat Strategy) []indicator.Row {
	required := func(r indicator.Row) bool {
		return indicator.Defined(r.RSI14) &&
			indicator.Defined(r.EMA9) &&
			indicator.Defined(r.EMA20) &&
			indicator.Defined(r.HistVol)
	}
	if strat == EntryExitSignals {
		required = func(r indicator.Row) bool {
			return indicator.Defined(r.RSI14) &&
				indicator.Defined(r.EMA9) &&
				indicator.Defined(r.EMA20) &&
				indicator.Defined(r.VWAP)
		}
	}

	out := make([]indicator.Row, 0, len(rows))
	for _, r := range rows {
		if required(r) {
			out = append(out, r)
		}
	}
	return out
}
