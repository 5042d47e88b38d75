package backtest

import (
	"math"
)

// aggregate reduces a trade list into summary statistics. An empty trade
// list produces a zeroed result with an explanatory note, never an error.
func aggregate(trades []TradeRecord, ticker string, strat Strategy, period string, totalSignals int, note string) *Result {
	res := &Result{
		Ticker:       ticker,
		Strategy:     strat,
		Period:       period,
		TotalSignals: totalSignals,
		Trades:       trades,
	}

	if len(trades) == 0 {
		res.Note = "No trades triggered during lookback period"
		return res
	}

	var wins, losses int
	var grossProfit, grossLoss float64
	var sumPct, sumHold float64

	for _, t := range trades {
		sumPct += t.PnLPct
		sumHold += float64(t.HoldingDays)
		if t.IsWin() {
			wins++
			grossProfit += t.PnL
		} else {
			losses++
			grossLoss += math.Abs(t.PnL)
		}
		switch t.ExitReason {
		case ExitSignal:
			res.SignalExits++
		case ExitMaxHold:
			res.TimeoutExits++
		}
	}

	n := float64(len(trades))
	res.TradesTaken = len(trades)
	res.Wins = wins
	res.Losses = losses
	res.WinRate = float64(wins) / n
	res.AvgReturnPct = round(sumPct/n, 1)
	res.AvgHoldingDays = math.Round(sumHold / n)
	res.MaxDrawdownPct = round(maxDrawdownPct(trades), 1)
	res.Note = note

	if grossLoss > 0 {
		res.ProfitFactor = round(grossProfit/grossLoss, 2)
	} else {
		res.ProfitFactor = math.Inf(1)
	}

	return res
}

// maxDrawdownPct finds the deepest peak-to-trough decline of the cumulative
// PnL curve, expressed as a percentage of the first trade's entry price.
// Position sizing is not modeled, so this is a simplification rather than a
// true equity-curve drawdown.
func maxDrawdownPct(trades []TradeRecord) float64 {
	if len(trades) == 0 || trades[0].EntryPrice == 0 {
		return 0
	}

	var cumulative, maxDD float64
	peak := math.Inf(-1)
	for _, t := range trades {
		cumulative += t.PnL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := cumulative - peak; dd < maxDD {
			maxDD = dd
		}
	}

	return maxDD / trades[0].EntryPrice * 100
}

func round(v float64, decimals int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
