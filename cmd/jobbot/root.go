package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cryoneth/job-bot-telegram/internal/classify"
	"github.com/cryoneth/job-bot-telegram/internal/config"
	"github.com/cryoneth/job-bot-telegram/internal/enrich"
	"github.com/cryoneth/job-bot-telegram/internal/match"
	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/notifier"
	"github.com/cryoneth/job-bot-telegram/internal/pipeline"
	"github.com/cryoneth/job-bot-telegram/internal/profile"
	"github.com/cryoneth/job-bot-telegram/internal/ratelimit"
	"github.com/cryoneth/job-bot-telegram/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobbot",
	Short: "Job alerts from Telegram channels, matched to your CV",
	Long: "jobbot watches job channels, classifies and scores each posting " +
		"against every user's CV and preferences, and alerts exactly once per match.",
	// Default to `run` so invoking the binary directly starts the daemon.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBBOT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBBOT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBBOT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openLedger(cfg *config.Config, logger *slog.Logger) (model.Ledger, error) {
	switch cfg.Ledger.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("using redis ledger", "addr", cfg.Ledger.RedisAddr)
		return store.NewRedisLedger(ctx, cfg.Ledger.RedisAddr, cfg.Ledger.RedisPass,
			cfg.Ledger.RedisDB, cfg.Ledger.Retention)
	default:
		return store.NewSQLiteLedger(cfg.Ledger.Path)
	}
}

func openProfiles(cfg *config.Config) (*profile.Store, error) {
	var vault *profile.Vault
	if cfg.Profiles.VaultKey != "" {
		v, err := profile.NewVault(cfg.Profiles.VaultKey)
		if err != nil {
			return nil, err
		}
		vault = v
	}
	return profile.NewStore(cfg.Profiles.Path, vault)
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notifier.Type {
	case "telegram":
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(cfg.Notifier.TelegramToken, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupScorer(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *match.Scorer {
	var similarity model.Similarity
	switch cfg.Scorer.Provider {
	case "openai":
		logger.Info("using openai similarity", "model", cfg.Scorer.Model)
		similarity = match.NewOpenAISimilarity(cfg.Scorer.BaseURL, cfg.Scorer.APIKey,
			cfg.Scorer.Model, httpClient)
	default:
		similarity = match.NewLexicalSimilarity()
	}
	return match.NewScorer(similarity, cfg.Scorer.Timeout)
}

func setupEnricher(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) pipeline.Enricher {
	if !cfg.Enrich.Enabled {
		return nil
	}
	limiter := ratelimit.NewHostLimiter(cfg.Enrich.HostDelay)
	fetcher := enrich.NewPageFetcher(httpClient, limiter)
	return enrich.NewEnricher(fetcher, cfg.Enrich.FetchTimeout, logger)
}

func buildPipeline(cfg *config.Config, ledger model.Ledger, profiles *profile.Store,
	n model.Notifier, enricher pipeline.Enricher, logger *slog.Logger) *pipeline.Pipeline {

	return pipeline.New(pipeline.Config{
		Workers:         cfg.Pipeline.Workers,
		QueueSize:       cfg.Pipeline.QueueSize,
		UserConcurrency: cfg.Pipeline.UserConcurrency,
	}, pipeline.Deps{
		Ledger:     ledger,
		Profiles:   profiles,
		Enricher:   enricher,
		Classifier: classify.New(cfg.Classifier.ExtraTerms, cfg.Classifier.MinKeywords),
		Scorer:     setupScorer(cfg, &http.Client{Timeout: cfg.Scorer.Timeout}, logger),
		Notifier:   n,
		Logger:     logger,
	})
}
