package main

import (
	"flag"
	"log"
	"os"

	"PairPulse/internal/di"
	"PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	"PairPulse/pkg/config"
	applogger "PairPulse/pkg/logger"
	"PairPulse/pkg/metrics"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	tf := flag.String("tf", "", "initial timeframe, seconds or duration (default from config)")
	logFile := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	identifier := flag.Arg(0)
	if identifier == "" {
		log.Fatalf("usage: client [flags] <token address>")
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *tf != "" {
		sec, err := repository.ParseTimeframe(*tf)
		if err != nil {
			log.Fatalf("bad -tf: %v", err)
		}
		cfg.Session.DefaultTimeframe = sec
	}

	l := applogger.NewNop()
	if *logFile != "" {
		cfg.Log.Output = *logFile
		cfg.Log.Format = "json"
		if l, err = di.ProvideLogger(cfg); err != nil {
			log.Fatalf("logger: %v", err)
		}
	}

	cache, err := di.ProvideResolveCache(cfg)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer cache.Close()

	palette, err := di.ProvidePalette(cfg)
	if err != nil {
		log.Fatalf("palette: %v", err)
	}

	sink := newFrameSink()
	source := di.ProvideQuoteSource(cfg, cache, l)
	session := usecase.NewSession(source, metrics.Nop{}, l, usecase.SessionConfig{
		PollInterval:     cfg.Session.PollInterval,
		FetchTimeout:     cfg.Dexscreener.Timeout,
		DefaultTimeframe: cfg.Session.DefaultTimeframe,
		MaxSamples:       cfg.Session.MaxSamples,
	}, usecase.WithObserver(sink))
	defer session.Stop()

	p := tea.NewProgram(newModel(identifier, session, sink, palette), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Printf("tui error: %v", err)
		os.Exit(1)
	}
}
