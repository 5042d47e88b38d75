package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vantagelabs/vantage/internal/app"
	"github.com/vantagelabs/vantage/internal/collector"
	"github.com/vantagelabs/vantage/internal/collector/yahoo"
	"github.com/vantagelabs/vantage/internal/config"
	"github.com/vantagelabs/vantage/internal/llm/factory"
	"github.com/vantagelabs/vantage/internal/metrics"
	"github.com/vantagelabs/vantage/internal/notifier/email"
	"github.com/vantagelabs/vantage/internal/storage/archive"
)

// loadConfig reads and validates configuration, falling back to defaults
// when no file is given.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildApp wires collectors, notifiers, the LLM, the archive and metrics
// into a pipeline per the configuration.
func buildApp(cfg *config.Config, log *zap.Logger) (*app.App, *metrics.Registry, *archive.Reports, error) {
	a := app.New(cfg, log)

	// Yahoo is the default collector unless explicitly disabled.
	if c, ok := cfg.Collectors["yahoo"]; !ok || c.Enabled {
		y := yahoo.New()
		if err := y.Init(collector.Config{Enabled: true, APIKey: cfg.Collectors["yahoo"].APIKey}); err != nil {
			return nil, nil, nil, fmt.Errorf("initializing yahoo collector: %w", err)
		}
		a.RegisterCollector(y)
	}

	for name, n := range cfg.Notifiers {
		if !n.Enabled {
			continue
		}
		switch name {
		case "email":
			e, err := email.New(n.Host, n.Port, n.Username, n.Password, n.From, n.To)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("initializing email notifier: %w", err)
			}
			if err := a.RegisterNotifier(e); err != nil {
				return nil, nil, nil, err
			}
		default:
			log.Warn("unknown notifier in config, skipping", zap.String("name", name))
		}
	}

	if cfg.LLM.Provider != "" {
		p, err := factory.New(cfg.LLM)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("initializing LLM provider: %w", err)
		}
		a.SetLLM(p)
	}

	st, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening report archive: %w", err)
	}
	reports := archive.NewReports(st)
	a.SetArchive(reports)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		a.SetMetrics(reg)
	}

	return a, reg, reports, nil
}
