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
	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/notifier"
	"github.com/cryoneth/job-bot-telegram/internal/store"
)

var replayCommit bool

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a message file through the pipeline",
	Long: "Runs the pipeline over an NDJSON message file (\"-\" for stdin). " +
		"By default nothing is persisted or sent: decisions go to an in-memory " +
		"ledger and alerts to the log. --commit uses the real ledger and notifier.",
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayCommit, "commit", false, "record decisions and send real alerts")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var ledger model.Ledger
	var n model.Notifier
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if replayCommit {
		ledger, err = openLedger(cfg, logger)
		if err != nil {
			logger.Error("failed to open ledger", "error", err)
			os.Exit(1)
		}
		n = setupNotifier(cfg, httpClient, logger)
	} else {
		logger.Info("dry-run replay, nothing will be persisted or sent")
		ledger = store.NewMemoryLedger()
		n = notifier.NewLogNotifier(logger)
	}
	defer ledger.Close()

	profiles, err := openProfiles(cfg)
	if err != nil {
		logger.Error("failed to open profile store", "error", err)
		os.Exit(1)
	}
	defer profiles.Close()

	src, err := ingest.NewFileSource(args[0])
	if err != nil {
		logger.Error("failed to open replay file", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	// Replays skip enrichment: they should be fast and not hit the network.
	p := buildPipeline(cfg, ledger, profiles, n, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx, src); err != nil {
		logger.Error("replay failed", "error", err)
		os.Exit(1)
	}

	logger.Info("replay complete")
	return nil
}
