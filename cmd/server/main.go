// Package main provides the entry point for the odds signal server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/books"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/oddsmath"
	"github.com/yourusername/sharpline/internal/provider"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/scheduler"
	"github.com/yourusername/sharpline/internal/server"
	"github.com/yourusername/sharpline/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "sharpline-server",
	Short: "Serve consensus odds signals over HTTP",
	Long:  `Polls bookmaker odds, removes vig, builds weighted sharp/public consensus and serves PLAY/LEAN/PASS signals over HTTP and websocket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"git_commit":  GitCommit,
		"build_date":  BuildDate,
		"environment": cfg.App.Environment,
		"sport":       cfg.OddsAPI.SportKey,
	}).Info("Sharpline server starting")

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	// Optional signal history store.
	var (
		db      *database.DB
		store   service.SignalStore
		history server.SignalHistory
	)
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = database.NewDB(ctx, &cfg.Database)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		err = db.InitSchema(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}

		repo := repository.NewPostgresSnapshotRepository(db)
		store = repo
		history = repo
		appLog.Info("Signal history store enabled")
	}

	client := provider.NewClient(cfg.OddsAPI, appLog)
	collector := provider.NewCollector(cfg.OddsAPI, client, appLog)
	classifier := books.NewClassifier(classifierConfig(cfg.Books))
	eng := engine.New(engineParams(cfg.Engine), classifier, appLog)

	snapshotSvc := service.NewSnapshotService(collector, eng, store, cfg.Snapshot.CacheTTL(), appLog)

	sched := scheduler.NewScheduler(snapshotSvc, appLog)
	if err := sched.ScheduleRefresh(cfg.Snapshot.CronSchedule); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	var dbPinger server.DatabasePinger
	if db != nil {
		dbPinger = db
	}
	srv := server.New(cfg.Server, cfg.Metrics, snapshotSvc, dbPinger, history, appLog)

	if cfg.Snapshot.RefreshOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if _, err := snapshotSvc.Refresh(ctx); err != nil {
			appLog.WithError(err).Warn("Initial snapshot refresh failed; continuing")
		}
		cancel()
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLog.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("HTTP server failed")
		}
	}

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Failed to stop scheduler")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.WithError(err).Error("Failed to shut down HTTP server")
	}

	appLog.Info("Sharpline server stopped")
	return nil
}

func engineParams(cfg config.EngineConfig) engine.Params {
	return engine.Params{
		VigMethod:        oddsmath.VigMethod(cfg.VigMethod),
		EVBaseline:       engine.EVBaseline(cfg.EVBaseline),
		MinBooks:         cfg.MinBooks,
		StabilityScale:   cfg.StabilityScale,
		StabilityNeutral: cfg.StabilityNeutral,
		EVFloor:          cfg.EVFloor,
		LeanFloor:        cfg.LeanFloor,
		StabilityFloor:   cfg.StabilityFloor,
		ExpiryWindow:     cfg.ExpiryWindow(),
		TopProps:         cfg.TopProps,
	}
}

func classifierConfig(cfg config.BooksConfig) books.Config {
	return books.Config{
		Weights:         cfg.Weights,
		FallbackWeight:  cfg.FallbackWeight,
		SharpBooks:      cfg.SharpBooks,
		SharpMultiplier: cfg.SharpMultiplier,
		ProxyFraction:   cfg.ProxyFraction,
	}
}
