// Command ecuador-macro extracts macroeconomic time series for Ecuador
// (and US dollarisation-relevant series) from the IMF DataMapper, the
// World Bank WDI API and FRED, writing CSV panels and metadata under a
// per-provider output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/AscendedCode/ecuador-macro/internal/config"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/infrastructure"
	"github.com/AscendedCode/ecuador-macro/internal/pipeline"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
	"github.com/AscendedCode/ecuador-macro/internal/provider/fred"
	"github.com/AscendedCode/ecuador-macro/internal/provider/imf"
	"github.com/AscendedCode/ecuador-macro/internal/provider/worldbank"
	"github.com/AscendedCode/ecuador-macro/internal/runner"
)

func main() {
	providersFlag := flag.String("providers", "imf,worldbank,fred", "comma-separated providers to run (imf, worldbank, fred)")
	configFile := flag.String("config", "", "path to YAML config file")
	outDir := flag.String("out", "", "output root directory (overrides config)")
	country := flag.String("country", "", "ISO3 country code (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug | info | warn | error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *country != "" {
		cfg.Country = *country
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
		closeLog = func() error { return nil }
	}
	defer closeLog()
	slog.SetDefault(logger)

	paths := cfg.Paths()
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create output directories: %v\n", err)
		os.Exit(1)
	}

	providers, err := buildProviders(*providersFlag, cfg, paths, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	r := runner.New(providers, cfg.Run.ProviderTimeout, logger, os.Stdout)
	if err := r.Run(context.Background()); err != nil {
		logger.Error("extraction run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildProviders assembles the requested pipelines in their fixed run
// order: IMF first, then World Bank, then FRED, matching their relative
// rate-limit headroom.
func buildProviders(selection string, cfg *config.Config, paths *config.Paths, logger *slog.Logger) ([]runner.Provider, error) {
	requested := make(map[string]bool)
	for _, name := range strings.Split(selection, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		switch name {
		case "imf", "worldbank", "fred":
			requested[name] = true
		default:
			return nil, fmt.Errorf("unknown provider %q (expected imf, worldbank or fred)", name)
		}
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("no providers selected")
	}

	clientOpts := fetch.Options{
		Timeout:         cfg.HTTP.Timeout,
		Retries:         cfg.HTTP.Retries,
		RetryBackoff:    cfg.HTTP.RetryBackoff,
		RetryMaxBackoff: cfg.HTTP.MaxBackoff,
		UserAgent:       cfg.HTTP.UserAgent,
	}

	var providers []runner.Provider
	add := func(displayName string, src provider.Source, pacer fetch.Pacer, dir string) {
		providers = append(providers, runner.Provider{
			Name: displayName,
			Dir:  dir,
			Pipeline: pipeline.New(src, pacer, cfg.Country, dir, logger.With("provider", src.Name()),
				os.Stdout),
		})
	}

	if requested["imf"] {
		client := fetch.NewClient(clientOpts, logger.With("provider", "imf"))
		src := imf.New(cfg.IMF, cfg.Country, client)
		pacer := fetch.NewIntervalPacer(0, cfg.IMF.BatchSize, cfg.IMF.BatchPause)
		add("IMF DataMapper", src, pacer, paths.IMFDir)
	}

	if requested["worldbank"] {
		client := fetch.NewClient(clientOpts, logger.With("provider", "worldbank"))
		pager := fetch.NewIntervalPacer(cfg.WorldBank.CallDelay, 0, 0)
		src := worldbank.New(cfg.WorldBank, cfg.Country, client, pager)
		pacer := fetch.NewIntervalPacer(cfg.WorldBank.CallDelay, cfg.WorldBank.BatchSize, cfg.WorldBank.BatchPause)
		add("World Bank (WDI)", src, pacer, paths.WorldBankDir)
	}

	if requested["fred"] {
		client := fetch.NewClient(clientOpts, logger.With("provider", "fred"))
		seriesPacer := fetch.NewIntervalPacer(cfg.FRED.SeriesDelay, 0, 0)
		childrenPacer := fetch.NewIntervalPacer(cfg.FRED.ChildrenDelay, 0, 0)
		src := fred.New(cfg.FRED, client, logger.With("provider", "fred"), seriesPacer, childrenPacer)
		pacer := fetch.NewIntervalPacer(cfg.FRED.SeriesDelay, 0, 0)
		add("FRED", src, pacer, paths.FREDDir)
	}

	return providers, nil
}
