//go:build linux

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"

	"ifplot/internal/app"
	"ifplot/internal/collector"
	"ifplot/internal/config"
	"ifplot/internal/iface"
	"ifplot/internal/probe"
	"ifplot/internal/series"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ifplot:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	tick := flag.Duration("tick", 0, "collection interval (overrides config)")
	source := flag.String("source", "", "counter source, ebpf or proc (overrides config)")
	profileCPU := flag.Bool("profile", false, "write a CPU profile to the working directory")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	if *tick > 0 {
		cfg.TickIntervalMS = int(tick.Milliseconds())
	}
	if *source != "" {
		cfg.Source = *source
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if *profileCPU {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	// The UI owns the terminal for the whole run, so logging goes to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	var src collector.Source
	var ctl app.ProbeController = app.NopController{}
	if cfg.Source == config.SourceEBPF {
		p, err := probe.Load()
		if err != nil {
			return fmt.Errorf("load kernel probe (try -source proc for unprivileged runs): %w", err)
		}
		defer p.Close()
		src = p
		ctl = p
	} else {
		src = probe.NewProcSource(cfg.TickInterval() / 2)
	}

	store := series.NewStore(cfg.WindowSamples)
	reg := iface.NewRegistry()
	col := collector.New(src, store)
	a := app.New(cfg, reg, store, col, ctl)

	// Setup fails before any terminal state is touched, so a fatal startup
	// error prints normally on stderr.
	if err := a.Setup(); err != nil {
		return err
	}
	return a.Run()
}
