package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/cli"
	"pulse.news/pulse/internal/collect"
	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/logging"
	"pulse.news/pulse/internal/store"
)

// Collection cadences. Retention runs daily in the quiet hours.
const (
	daemonHNSchedule     = "@every 10m"
	daemonRSSSchedule    = "@every 30m"
	daemonGitHubSchedule = "@every 1h"
	daemonSweepSchedule  = "0 3 * * *"

	daemonRunTimeout = 10 * time.Minute
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	runAtStart := fs.Bool("run-at-start", true, "Run all collectors once at startup")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// The daemon owns the process lifetime, so the connect timeout only
	// bounds the initial dial and migration.
	_, cancelConnect, pool, st, cfg, err := connectStore(30*time.Second, envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Daemon failed: %v\n", err)
		return 1
	}
	cancelConnect()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	collectors, err := buildCollectors(cfg, st, logger, "all")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	scheduler := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	schedules := map[string]string{
		db.SourceHackerNews: daemonHNSchedule,
		db.SourceRSS:        daemonRSSSchedule,
		db.SourceGitHub:     daemonGitHubSchedule,
	}
	for _, collector := range collectors {
		spec, ok := schedules[collector.Name()]
		if !ok {
			logger.Warn().Str("source", collector.Name()).Msg("no schedule for collector")
			continue
		}
		if _, err := scheduler.AddFunc(spec, daemonCollectJob(ctx, collector, logger)); err != nil {
			logger.Error().Err(err).Str("source", collector.Name()).Msg("schedule collector failed")
			return 1
		}
	}

	if _, err := scheduler.AddFunc(daemonSweepSchedule, daemonSweepJob(ctx, st, logger)); err != nil {
		logger.Error().Err(err).Msg("schedule retention sweep failed")
		return 1
	}

	if *runAtStart {
		for _, collector := range collectors {
			daemonCollectJob(ctx, collector, logger)()
		}
	}

	scheduler.Start()
	logger.Info().Msg("pulse daemon started")

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("pulse daemon stopped")
	return 0
}

func daemonCollectJob(ctx context.Context, collector collect.Collector, logger zerolog.Logger) func() {
	return func() {
		runCtx, cancel := context.WithTimeout(ctx, daemonRunTimeout)
		defer cancel()

		result, err := collector.Collect(runCtx)
		if err != nil {
			logger.Error().Err(err).Str("source", collector.Name()).Msg("scheduled collection failed")
			return
		}
		logger.Info().
			Str("source", result.Source).
			Int("inserted", result.Inserted).
			Int("updated", result.Updated).
			Msg("scheduled collection finished")
	}
}

func daemonSweepJob(ctx context.Context, st *store.Store, logger zerolog.Logger) func() {
	return func() {
		runCtx, cancel := context.WithTimeout(ctx, daemonRunTimeout)
		defer cancel()

		deleted, err := sweepRetention(runCtx, st)
		if err != nil {
			logger.Error().Err(err).Int64("deleted", deleted).Msg("retention sweep failed")
			return
		}
		logger.Info().Int64("deleted", deleted).Msg("retention sweep finished")
	}
}
