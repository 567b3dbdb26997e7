package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cryoneth/job-bot-telegram/internal/ingest"
	"github.com/cryoneth/job-bot-telegram/internal/schedule"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alert pipeline",
	Long: "Drains the configured message source through the pipeline, " +
		"recording decisions in the ledger; stops on end-of-stream or SIGINT/SIGTERM.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"source", cfg.Source.Path,
		"ledger", cfg.Ledger.Backend,
		"scorer", cfg.Scorer.Provider,
		"notifier", cfg.Notifier.Type,
	)

	ledger, err := openLedger(cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	profiles, err := openProfiles(cfg)
	if err != nil {
		logger.Error("failed to open profile store", "error", err)
		os.Exit(1)
	}
	defer profiles.Close()

	src, err := ingest.NewFileSource(cfg.Source.Path)
	if err != nil {
		logger.Error("failed to open source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)
	enricher := setupEnricher(cfg, httpClient, logger)

	p := buildPipeline(cfg, ledger, profiles, n, enricher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ledger.CleanSpec != "" && cfg.Ledger.Retention > 0 {
		maint, err := schedule.NewMaintenance(cfg.Ledger.CleanSpec, ledger, cfg.Ledger.Retention, logger)
		if err != nil {
			logger.Error("failed to schedule maintenance", "error", err)
			os.Exit(1)
		}
		maint.Start()
		defer maint.Stop()
	}

	if err := p.Run(ctx, src); err != nil {
		logger.Error("pipeline error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
