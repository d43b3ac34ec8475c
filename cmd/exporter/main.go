package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eliezerRevach/finance-data/internal/collector"
	"github.com/eliezerRevach/finance-data/internal/config"
	"github.com/eliezerRevach/finance-data/internal/logger"
	"github.com/eliezerRevach/finance-data/internal/pipeline"
	"github.com/eliezerRevach/finance-data/internal/publisher"
	"github.com/eliezerRevach/finance-data/internal/recorder"
	"github.com/eliezerRevach/finance-data/internal/scheduler"
)

func main() {
	logger.Init()
	log := logger.L()
	log.Info().Msg("finance-data exporter starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	start, err := cfg.WindowStart()
	if err != nil {
		log.Fatal().Err(err).Msg("parse window start")
	}

	// Init fetcher
	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	log.Info().Str("source", fetcher.Name()).Msg("data source initialized")

	// Init publisher
	pub := publisher.NewGitHubPublisher(cfg.GitHub.Repo, cfg.GitHub.Branch, cfg.GitHub.Token, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := pipeline.NewRunner(fetcher, pub, rec, cfg.Export.Symbols, start, cfg.Export.ArtifactDir)

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner)
	if err := sched.Register(cfg.Schedule.ExportCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing export now")
		go sched.RunNow()
	}

	log.Info().Msg("exporter is running, press Ctrl+C to stop")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("exporter stopped")
}
