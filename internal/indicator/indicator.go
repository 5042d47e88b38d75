// Package indicator derives technical indicator series from daily OHLCV bars.
//
// All functions return slices index-aligned with their input; positions with
// insufficient warm-up history hold NaN rather than being truncated, so a
// caller can line indicator values up with the bar at the same index.
package indicator

import "math"

var nan = math.NaN()

// SMA calculates a simple moving average. The first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA calculates an exponential moving average with smoothing 2/(span+1),
// seeded by the first value (recursive form, pandas adjust=false). Every
// entry is defined.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// RSI calculates the relative strength index from rolling mean gains and
// losses over day-over-day close deltas. Entries before period deltas have
// accumulated are NaN. When the average loss is exactly zero the index
// saturates at 100 instead of dividing by zero.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACDHistogram returns EMA12-EMA26 minus its own 9-period EMA.
func MACDHistogram(closes []float64, fast, slow, signal int) []float64 {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macd := make([]float64, len(closes))
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}

	signalLine := EMA(macd, signal)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = macd[i] - signalLine[i]
	}
	return out
}

// BollingerWidth returns the 2-sigma band width normalized by the middle
// band: (upper - lower) / SMA.
func BollingerWidth(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	mid := SMA(closes, period)
	sd := rollingStdDev(closes, period)

	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(sd[i]) || mid[i] == 0 {
			continue
		}
		out[i] = 4 * sd[i] / mid[i]
	}
	return out
}

// RollingVWAP returns the volume-weighted average of typical prices over a
// trailing window. Windows with zero total volume are NaN.
func RollingVWAP(typical []float64, volumes []float64, period int) []float64 {
	out := nanSlice(len(typical))
	if len(typical) < period {
		return out
	}

	var pvSum, volSum float64
	for i := range typical {
		pvSum += typical[i] * volumes[i]
		volSum += volumes[i]
		if i >= period {
			pvSum -= typical[i-period] * volumes[i-period]
			volSum -= volumes[i-period]
		}
		if i >= period-1 && volSum > 0 {
			out[i] = pvSum / volSum
		}
	}
	return out
}

// HistoricalVolatility returns the annualized standard deviation of daily
// log returns over a trailing window, scaled by sqrt(252).
func HistoricalVolatility(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < window+1 {
		return out
	}

	logReturns := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i] > 0 && closes[i-1] > 0 {
			logReturns[i] = math.Log(closes[i] / closes[i-1])
		}
	}

	sd := rollingStdDev(logReturns, window)
	for i := range sd {
		if !math.IsNaN(sd[i]) {
			out[i] = sd[i] * math.Sqrt(252)
		}
	}
	return out
}

// ATR returns the rolling mean of the true range:
// max(high-low, |high-prevClose|, |low-prevClose|).
func ATR(highs, lows, closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period {
		return out
	}

	tr := make([]float64, len(closes))
	for i := range closes {
		hl := highs[i] - lows[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hpc := math.Abs(highs[i] - closes[i-1])
		lpc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hpc, lpc))
	}

	var sum float64
	for i, v := range tr {
		sum += v
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// rollingStdDev computes a trailing sample standard deviation (n-1
// denominator). Windows containing NaN are NaN.
func rollingStdDev(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period < 2 || len(values) < period {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]

		var sum float64
		valid := true
		for _, v := range window {
			if math.IsNaN(v) {
				valid = false
				break
			}
			sum += v
		}
		if !valid {
			continue
		}

		mean := sum / float64(period)
		var variance float64
		for _, v := range window {
			variance += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(variance / float64(period-1))
	}
	return out
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = nan
	}
	return s
}
