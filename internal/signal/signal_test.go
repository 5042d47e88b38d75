package signal

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vantagelabs/vantage/internal/core"
	"github.com/vantagelabs/vantage/internal/indicator"
)

func defined() indicator.Row {
	return indicator.Row{
		Date:    time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Close:   100,
		EMA9:    101,
		EMA20:   100,
		SMA50:   95,
		RSI14:   50,
		VWAP:    99,
		ATR14:   2,
		HistVol: 0.3,
	}
}

func TestEvaluateEntrySignal(t *testing.T) {
	prev := defined()
	prev.EMA9 = 99.5
	prev.EMA20 = 100

	last := defined()
	last.RSI14 = 28.3
	last.Close = 97
	last.VWAP = 99
	last.EMA9 = 100.2
	last.EMA20 = 100

	snap, err := Evaluate("AAPL", []indicator.Row{prev, last})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !snap.Entry {
		t.Fatal("expected entry signal")
	}
	if snap.Exit {
		t.Error("entry and exit must not fire together")
	}
	if len(snap.EntryReasons) != 3 {
		t.Errorf("EntryReasons = %v, want all three clauses", snap.EntryReasons)
	}
	if snap.Price != 97 || snap.Ticker != "AAPL" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestEvaluatePartialClausesNoEntry(t *testing.T) {
	prev := defined()
	last := defined()
	last.RSI14 = 28 // oversold, but no crossover and price above VWAP

	snap, err := Evaluate("AAPL", []indicator.Row{prev, last})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if snap.Entry {
		t.Error("one clause alone must not trigger an entry")
	}
	if len(snap.EntryReasons) != 0 {
		t.Errorf("EntryReasons = %v, want none recorded without a full signal", snap.EntryReasons)
	}
}

func TestEvaluateExitSignal(t *testing.T) {
	prev := defined() // EMA9 above EMA20

	last := defined()
	last.RSI14 = 72
	last.Close = 104
	last.VWAP = 99
	last.EMA9 = 99.8
	last.EMA20 = 100

	snap, err := Evaluate("AAPL", []indicator.Row{prev, last})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !snap.Exit {
		t.Fatal("expected exit signal")
	}
	if len(snap.ExitReasons) != 3 {
		t.Errorf("ExitReasons = %v", snap.ExitReasons)
	}
}

func TestEvaluateUndefinedIndicators(t *testing.T) {
	prev := defined()
	last := defined()
	last.RSI14 = math.NaN()

	_, err := Evaluate("AAPL", []indicator.Row{prev, last})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}

	_, err = Evaluate("AAPL", []indicator.Row{last})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("single row err = %v, want ErrInsufficientData", err)
	}
}

func TestFromBars(t *testing.T) {
	if _, err := FromBars("AAPL", nil); !errors.Is(err, core.ErrNoData) {
		t.Error("expected ErrNoData for empty series")
	}

	bars := make([]core.PriceBar, 60)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 100.0 + 0.2*float64(i)
		bars[i] = core.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}

	snap, err := FromBars("AAPL", bars)
	if err != nil {
		t.Fatalf("FromBars: %v", err)
	}
	if snap.Entry {
		t.Error("steady uptrend must not look oversold")
	}
	if snap.Price != bars[len(bars)-1].Close {
		t.Errorf("Price = %v, want latest close", snap.Price)
	}
}
