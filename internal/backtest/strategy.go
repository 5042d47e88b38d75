package backtest

import (
	"math"

	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/indicator"
	"github.com/vantagelabs/vantage/internal/pricing"
)

// minDenominator floors percentage-return denominators so a near-zero net
// premium can never blow up a percentage.
const minDenominator = 0.01

// directional bias drives the RSI reversal exit during simulation.
type bias int

const (
	biasNone bias = iota
	biasBullish
	biasBearish
)

// rule couples a strategy's entry predicate with its P&L simulation.
type rule struct {
	entry func(row, prev indicator.Row) bool
	pnl   func(entryPrice, exitPrice, sigma float64, targetDTE int, riskFree float64) (pnl, pct float64)
	bias  bias
}

// rules holds the seven option strategies. ENTRY_EXIT_SIGNALS is handled
// separately by the simulator since it has no option legs.
var rules = map[Strategy]rule{
	CoveredCall: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				indicator.Defined(row.SMA50) && row.Close > row.SMA50 &&
				row.RSI14 >= 40 && row.RSI14 <= 60 &&
				row.EMA9 > row.EMA20
		},
		pnl:  simulateCoveredCall,
		bias: biasBullish,
	},
	CashSecuredPut: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				row.RSI14 < 40 &&
				indicator.Defined(row.HistVol) && row.HistVol > 0.30
		},
		pnl: simulateCashSecuredPut,
	},
	BullCallSpread: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				row.EMA9 > row.EMA20 &&
				row.RSI14 < 65 &&
				indicator.Defined(row.VWAP) && row.Close > row.VWAP &&
				indicator.Defined(row.MACDHist) && row.MACDHist > 0
		},
		pnl:  simulateBullCallSpread,
		bias: biasBullish,
	},
	BearCallSpread: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				row.EMA9 < row.EMA20 &&
				row.RSI14 > 65 &&
				indicator.Defined(row.HistVol) && row.HistVol > 0.40
		},
		pnl:  simulateBearCallSpread,
		bias: biasBearish,
	},
	IronCondor: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				indicator.Defined(row.BollWidth) && row.BollWidth < 0.06 &&
				row.RSI14 >= 40 && row.RSI14 <= 60 &&
				indicator.Defined(row.HistVol) && row.HistVol >= 0.40 && row.HistVol <= 0.70
		},
		pnl: simulateIronCondor,
	},
	ProtectivePut: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				row.RSI14 > 60 &&
				indicator.Defined(row.SMA50) && row.Close > row.SMA50
		},
		pnl: simulateProtectivePut,
	},
	LongStraddle: {
		entry: func(row, prev indicator.Row) bool {
			return baseDefined(row) &&
				indicator.Defined(row.BollWidth) && row.BollWidth < 0.04 &&
				indicator.Defined(row.HistVol) && row.HistVol < 0.50
		},
		pnl: simulateLongStraddle,
	},
}

// baseDefined guards the fields every entry predicate reads. A missing
// input makes the clause, and therefore the entry, false — never an error.
func baseDefined(row indicator.Row) bool {
	return indicator.Defined(row.RSI14) &&
		indicator.Defined(row.EMA9) &&
		indicator.Defined(row.EMA20)
}

// entryExitEntry is the long-only swing entry: oversold below VWAP with a
// fresh EMA9/EMA20 upward crossover.
func entryExitEntry(row, prev indicator.Row) bool {
	if !baseDefined(row) || !indicator.Defined(row.VWAP) ||
		!indicator.Defined(prev.EMA9) || !indicator.Defined(prev.EMA20) {
		return false
	}
	crossedUp := prev.EMA9 <= prev.EMA20 && row.EMA9 > row.EMA20
	return row.RSI14 < 35 && row.Close < row.VWAP && crossedUp
}

// entryExitExit is the matching exit: overbought above VWAP with a
// downward crossover.
func entryExitExit(row, prev indicator.Row) bool {
	if !baseDefined(row) || !indicator.Defined(row.VWAP) ||
		!indicator.Defined(prev.EMA9) || !indicator.Defined(prev.EMA20) {
		return false
	}
	crossedDown := prev.EMA9 > prev.EMA20 && row.EMA9 < row.EMA20
	return row.RSI14 > 65 && row.Close > row.VWAP && crossedDown
}

// expiryTimes returns the model times used to price legs at entry and exit.
// Exit repricing assumes ~60% of the target holding period has elapsed,
// floored at one day so legs never expire mid-simulation.
func expiryTimes(targetDTE int) (tEntry, tExit float64) {
	tEntry = float64(targetDTE) / 365.0
	tExit = math.Max(1.0/365.0, tEntry*0.4)
	return tEntry, tExit
}

func simulateCoveredCall(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	strike := entry * 1.03 // ~3% OTM

	premiumIn := pricing.Price(core.OptionCall, entry, strike, tEntry, r, sigma)
	premiumOut := pricing.Price(core.OptionCall, exit, strike, tExit, r, sigma)

	stockPnL := exit - entry
	optionPnL := premiumIn - premiumOut // short call profits from decay
	pnl := stockPnL + optionPnL
	return pnl, pnl / entry * 100
}

func simulateCashSecuredPut(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	strike := entry // ATM

	premiumIn := pricing.Price(core.OptionPut, entry, strike, tEntry, r, sigma)
	premiumOut := pricing.Price(core.OptionPut, exit, strike, tExit, r, sigma)

	pnl := premiumIn - premiumOut
	return pnl, pnl / strike * 100
}

func simulateBullCallSpread(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	buyStrike := entry
	sellStrike := entry * 1.05

	buyIn := pricing.Price(core.OptionCall, entry, buyStrike, tEntry, r, sigma)
	sellIn := pricing.Price(core.OptionCall, entry, sellStrike, tEntry, r, sigma)
	buyOut := pricing.Price(core.OptionCall, exit, buyStrike, tExit, r, sigma)
	sellOut := pricing.Price(core.OptionCall, exit, sellStrike, tExit, r, sigma)

	netDebit := buyIn - sellIn
	netExit := buyOut - sellOut
	pnl := netExit - netDebit
	return pnl, pnl / math.Max(netDebit, minDenominator) * 100
}

func simulateBearCallSpread(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	sellStrike := entry * 1.01 // slightly OTM
	buyStrike := entry * 1.05

	sellIn := pricing.Price(core.OptionCall, entry, sellStrike, tEntry, r, sigma)
	buyIn := pricing.Price(core.OptionCall, entry, buyStrike, tEntry, r, sigma)
	sellOut := pricing.Price(core.OptionCall, exit, sellStrike, tExit, r, sigma)
	buyOut := pricing.Price(core.OptionCall, exit, buyStrike, tExit, r, sigma)

	netCredit := sellIn - buyIn
	netExitCost := sellOut - buyOut
	pnl := netCredit - netExitCost
	return pnl, pnl / math.Max(netCredit, minDenominator) * 100
}

func simulateIronCondor(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	sellCallStrike := entry * 1.05
	buyCallStrike := entry * 1.08
	sellPutStrike := entry * 0.95
	buyPutStrike := entry * 0.92

	scIn := pricing.Price(core.OptionCall, entry, sellCallStrike, tEntry, r, sigma)
	bcIn := pricing.Price(core.OptionCall, entry, buyCallStrike, tEntry, r, sigma)
	spIn := pricing.Price(core.OptionPut, entry, sellPutStrike, tEntry, r, sigma)
	bpIn := pricing.Price(core.OptionPut, entry, buyPutStrike, tEntry, r, sigma)

	scOut := pricing.Price(core.OptionCall, exit, sellCallStrike, tExit, r, sigma)
	bcOut := pricing.Price(core.OptionCall, exit, buyCallStrike, tExit, r, sigma)
	spOut := pricing.Price(core.OptionPut, exit, sellPutStrike, tExit, r, sigma)
	bpOut := pricing.Price(core.OptionPut, exit, buyPutStrike, tExit, r, sigma)

	netCredit := (scIn + spIn) - (bcIn + bpIn)
	netExit := (scOut + spOut) - (bcOut + bpOut)
	pnl := netCredit - netExit
	return pnl, pnl / math.Max(netCredit, minDenominator) * 100
}

func simulateProtectivePut(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	strike := entry * 0.95 // 5% OTM

	premiumIn := pricing.Price(core.OptionPut, entry, strike, tEntry, r, sigma)
	premiumOut := pricing.Price(core.OptionPut, exit, strike, tExit, r, sigma)

	stockPnL := exit - entry
	optionPnL := premiumOut - premiumIn // long put
	pnl := stockPnL + optionPnL
	return pnl, pnl / entry * 100
}

func simulateLongStraddle(entry, exit, sigma float64, targetDTE int, r float64) (float64, float64) {
	tEntry, tExit := expiryTimes(targetDTE)
	strike := entry // ATM call + put

	callIn := pricing.Price(core.OptionCall, entry, strike, tEntry, r, sigma)
	putIn := pricing.Price(core.OptionPut, entry, strike, tEntry, r, sigma)
	callOut := pricing.Price(core.OptionCall, exit, strike, tExit, r, sigma)
	putOut := pricing.Price(core.OptionPut, exit, strike, tExit, r, sigma)

	totalDebit := callIn + putIn
	totalExit := callOut + putOut
	pnl := totalExit - totalDebit
	return pnl, pnl / math.Max(totalDebit, minDenominator) * 100
}
