// Package main provides a one-shot CLI scan: fetch odds, aggregate
// and print the resulting signals as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/books"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/engine"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
	"github.com/yourusername/sharpline/internal/provider"
)

var (
	configFile string
	playsOnly  bool
	skipProps  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&playsOnly, "plays-only", false, "Only print games whose best market is a PLAY")
	rootCmd.Flags().BoolVar(&skipProps, "skip-props", false, "Skip player prop markets")
}

var rootCmd = &cobra.Command{
	Use:   "sharpline-scan",
	Short: "Run a single odds scan and print signals as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

type scanOutput struct {
	Games          []*models.Game `json:"games"`
	FetchedAt      time.Time      `json:"fetched_at"`
	QuotaRemaining int            `json:"quota_remaining,omitempty"`
}

func runScan() error {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

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

	// Keep stdout clean for the JSON payload.
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.SetOutput(os.Stderr)

	if skipProps {
		cfg.OddsAPI.FetchProps = false
	}

	client := provider.NewClient(cfg.OddsAPI, appLog)
	collector := provider.NewCollector(cfg.OddsAPI, client, appLog)
	classifier := books.NewClassifier(books.Config{
		Weights:         cfg.Books.Weights,
		FallbackWeight:  cfg.Books.FallbackWeight,
		SharpBooks:      cfg.Books.SharpBooks,
		SharpMultiplier: cfg.Books.SharpMultiplier,
		ProxyFraction:   cfg.Books.ProxyFraction,
	})
	eng := engine.New(engineParams(cfg.Engine), classifier, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshots, err := collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect odds: %w", err)
	}

	games := eng.EvaluateGames(snapshots, time.Now().UTC())
	if playsOnly {
		games = filterPlays(games)
	}
	if games == nil {
		games = []*models.Game{}
	}

	appLog.WithFields(logrus.Fields{
		"events": len(snapshots),
		"games":  len(games),
	}).Info("Scan complete")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(scanOutput{
		Games:          games,
		FetchedAt:      time.Now().UTC(),
		QuotaRemaining: client.QuotaRemaining(),
	})
}

func filterPlays(games []*models.Game) []*models.Game {
	out := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if g.BestMarket == nil {
			continue
		}
		signal, ok := g.Markets[*g.BestMarket]
		if !ok || signal.Decision != models.DecisionPlay {
			continue
		}
		out = append(out, g)
	}
	return out
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
