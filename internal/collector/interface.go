package collector

import (
	"github.com/vantagelabs/vantage/internal/core"
)

// Config holds collector configuration
type Config struct {
	Enabled bool
	APIKey  string
	Extra   map[string]any
}

// Collector defines the interface for market data sources. FetchDaily
// doubles as the bar provider for the backtest engine, so any registered
// collector can feed simulations directly.
type Collector interface {
	// Metadata
	Name() string

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchQuote(symbol string) (*core.Quote, error)
	FetchDaily(symbol string, lookbackDays int) ([]core.PriceBar, error)
}
