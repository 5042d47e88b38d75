package core

import "time"

// PriceBar represents a single daily OHLCV bar.
// Series are ordered ascending by date; missing trading days are simply
// absent, never interpolated.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// IsValid checks if the bar carries usable price data
func (b PriceBar) IsValid() bool {
	return b.Close > 0 && b.High >= b.Low
}

// TypicalPrice returns (high + low + close) / 3, used for rolling VWAP
func (b PriceBar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// OptionType represents the side of an option contract
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Quote represents the latest price snapshot for a symbol
type Quote struct {
	Symbol string
	Price  float64
	Volume int64
	Time   time.Time
	Source string
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}
