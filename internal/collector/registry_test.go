package collector

import (
	"testing"

	"github.com/vantagelabs/vantage/internal/core"
)

type fakeCollector struct {
	name string
}

func (f *fakeCollector) Name() string          { return f.name }
func (f *fakeCollector) Init(cfg Config) error { return nil }

func (f *fakeCollector) FetchQuote(symbol string) (*core.Quote, error) {
	return &core.Quote{Symbol: symbol, Price: 1, Source: f.name}, nil
}
func (f *fakeCollector) FetchDaily(symbol string, lookbackDays int) ([]core.PriceBar, error) {
	return nil, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeCollector{name: "alpha"})
	r.Register(&fakeCollector{name: "beta"})

	c, ok := r.Get("alpha")
	if !ok || c.Name() != "alpha" {
		t.Errorf("Get(alpha) = %v, %v", c, ok)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("expected Get(missing) to report absence")
	}

	if got := len(r.GetAll()); got != 2 {
		t.Errorf("GetAll() returned %d collectors, want 2", got)
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	first := &fakeCollector{name: "dup"}
	second := &fakeCollector{name: "dup"}
	r.Register(first)
	r.Register(second)

	c, _ := r.Get("dup")
	if c != Collector(second) {
		t.Error("expected the later registration to win")
	}
	if got := len(r.GetAll()); got != 1 {
		t.Errorf("GetAll() returned %d collectors, want 1", got)
	}
}
