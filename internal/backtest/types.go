package backtest

import "fmt"

// Strategy identifies one of the simulated strategy variants.
type Strategy string

const (
	CoveredCall      Strategy = "COVERED_CALL"
	CashSecuredPut   Strategy = "CASH_SECURED_PUT"
	BullCallSpread   Strategy = "BULL_CALL_SPREAD"
	BearCallSpread   Strategy = "BEAR_CALL_SPREAD"
	IronCondor       Strategy = "IRON_CONDOR"
	ProtectivePut    Strategy = "PROTECTIVE_PUT"
	LongStraddle     Strategy = "LONG_STRADDLE"
	EntryExitSignals Strategy = "ENTRY_EXIT_SIGNALS"
)

// OptionStrategies lists the seven Black-Scholes-priced strategies, in
// stable order.
func OptionStrategies() []Strategy {
	return []Strategy{
		CoveredCall,
		CashSecuredPut,
		BullCallSpread,
		BearCallSpread,
		IronCondor,
		ProtectivePut,
		LongStraddle,
	}
}

// AllStrategies lists every strategy variant, ENTRY_EXIT_SIGNALS last.
func AllStrategies() []Strategy {
	return append(OptionStrategies(), EntryExitSignals)
}

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if _, ok := rules[s]; ok || s == EntryExitSignals {
		return s, nil
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// Exit reasons recorded on trades.
const (
	ExitExpiry   = "expiry"
	ExitReversal = "reversal"
	ExitSignal   = "signal"
	ExitMaxHold  = "max_hold"
)

// TradeRecord is one closed simulated trade. Immutable once created.
type TradeRecord struct {
	EntryPrice  float64
	ExitPrice   float64
	HoldingDays int
	PnL         float64
	PnLPct      float64
	ExitReason  string
}

// IsWin returns true if the trade was profitable
func (t TradeRecord) IsWin() bool {
	return t.PnL > 0
}

// position tracks a single open trade inside the simulator. At most one
// position is open per (ticker, strategy) at any time.
type position struct {
	entryIndex int
	entryPrice float64
	entryVol   float64
	holdDays   int
}

// Result is the terminal output of a single backtest invocation.
type Result struct {
	Ticker         string
	Strategy       Strategy
	Period         string
	TotalSignals   int
	TradesTaken    int
	Wins           int
	Losses         int
	WinRate        float64
	AvgReturnPct   float64
	MaxDrawdownPct float64
	ProfitFactor   float64 // +Inf when there are wins and no losses
	AvgHoldingDays float64
	SignalExits    int // ENTRY_EXIT_SIGNALS only
	TimeoutExits   int // ENTRY_EXIT_SIGNALS only
	Note           string
	Trades         []TradeRecord
}

// Options holds caller-supplied backtest parameters.
type Options struct {
	LookbackDays int
	TargetDTE    int
	MaxHoldDays  int
	RiskFreeRate float64
}

// DefaultOptions returns the standard one-year configuration.
func DefaultOptions() Options {
	return Options{
		LookbackDays: 252,
		TargetDTE:    30,
		MaxHoldDays:  30,
		RiskFreeRate: 0.05,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LookbackDays <= 0 {
		o.LookbackDays = d.LookbackDays
	}
	if o.TargetDTE <= 0 {
		o.TargetDTE = d.TargetDTE
	}
	if o.MaxHoldDays <= 0 {
		o.MaxHoldDays = d.MaxHoldDays
	}
	if o.RiskFreeRate == 0 {
		o.RiskFreeRate = d.RiskFreeRate
	}
	return o
}
