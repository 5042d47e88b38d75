package indicator

import (
	"math"
	"time"

	"github.com/vantagelabs/vantage/internal/core"
)

// Standard lookbacks used by the strategy rule set.
const (
	RSIPeriod        = 14
	ATRPeriod        = 14
	FastEMASpan      = 9
	SlowEMASpan      = 20
	MACDFastSpan     = 12
	MACDSlowSpan     = 26
	MACDSignalSpan   = 9
	BollingerPeriod  = 20
	VWAPPeriod       = 20
	VolatilityWindow = 20
	TrendSMAPeriod   = 50
)

// Row carries the indicator values for a single trading day. Fields without
// enough warm-up history are NaN; consumers must treat NaN as "condition not
// satisfied", never as an error.
type Row struct {
	Date      time.Time
	Close     float64
	EMA9      float64
	EMA20     float64
	SMA50     float64
	RSI14     float64
	MACDHist  float64
	BollWidth float64
	VWAP      float64
	HistVol   float64
	ATR14     float64
}

// Defined reports whether v holds a computed value.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// Compute derives the full indicator table from a daily bar series. The
// result is index-aligned with bars: one row per input bar.
func Compute(bars []core.PriceBar) []Row {
	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	typical := make([]float64, n)

	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumes[i] = float64(b.Volume)
		typical[i] = b.TypicalPrice()
	}

	ema9 := EMA(closes, FastEMASpan)
	ema20 := EMA(closes, SlowEMASpan)
	sma50 := SMA(closes, TrendSMAPeriod)
	rsi := RSI(closes, RSIPeriod)
	macdHist := MACDHistogram(closes, MACDFastSpan, MACDSlowSpan, MACDSignalSpan)
	bollWidth := BollingerWidth(closes, BollingerPeriod)
	vwap := RollingVWAP(typical, volumes, VWAPPeriod)
	histVol := HistoricalVolatility(closes, VolatilityWindow)
	atr := ATR(highs, lows, closes, ATRPeriod)

	rows := make([]Row, n)
	for i := range bars {
		rows[i] = Row{
			Date:      bars[i].Date,
			Close:     closes[i],
			EMA9:      ema9[i],
			EMA20:     ema20[i],
			SMA50:     sma50[i],
			RSI14:     rsi[i],
			MACDHist:  macdHist[i],
			BollWidth: bollWidth[i],
			VWAP:      vwap[i],
			HistVol:   histVol[i],
			ATR14:     atr[i],
		}
	}
	return rows
}
