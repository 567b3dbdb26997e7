package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobbot daemon.
type Config struct {
	Source     SourceConfig
	Pipeline   PipelineConfig
	Classifier ClassifierConfig
	Scorer     ScorerConfig
	Ledger     LedgerConfig
	Profiles   ProfilesConfig
	Enrich     EnrichConfig
	Notifier   NotifierConfig
}

// SourceConfig describes where raw messages come from.
type SourceConfig struct {
	Path string // NDJSON file, "-" for stdin
}

// PipelineConfig holds the concurrency knobs.
type PipelineConfig struct {
	Workers         int
	QueueSize       int
	UserConcurrency int
}

// ClassifierConfig tunes the job/not-job classifier.
type ClassifierConfig struct {
	ExtraTerms  []string // appended to the built-in lexicon
	MinKeywords int      // 0 means the built-in default
}

// ScorerConfig selects and configures the similarity provider.
type ScorerConfig struct {
	Provider string        // "lexical" or "openai"
	BaseURL  string        // openai only, defaults to https://api.openai.com/v1
	Model    string        // openai embedding model
	APIKey   string        // expanded from env var by Load
	Timeout  time.Duration // per-similarity-call bound
}

// LedgerConfig selects the dedup ledger backend.
type LedgerConfig struct {
	Backend   string        // "sqlite" or "redis"
	Path      string        // sqlite file path
	RedisAddr string        // host:port, redis only
	RedisPass string        // redis only
	RedisDB   int           // redis only
	Retention time.Duration // 0 keeps decisions forever
	CleanSpec string        // cron spec for retention cleanup
}

// ProfilesConfig locates the user profile store.
type ProfilesConfig struct {
	Path     string // sqlite file path
	VaultKey string // hex-encoded 32-byte key; empty stores CVs unencrypted
}

// EnrichConfig tunes the detail-page enricher.
type EnrichConfig struct {
	Enabled      bool
	FetchTimeout time.Duration // per-attempt bound
	HostDelay    time.Duration // minimum gap between fetches to one host
}

// NotifierConfig controls which notifier is used and its settings.
type NotifierConfig struct {
	Type          string // "log" or "telegram"
	TelegramToken string // required if type is "telegram"
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and
// durations as strings).
type rawConfig struct {
	Source     rawSourceConfig     `yaml:"source"`
	Pipeline   rawPipelineConfig   `yaml:"pipeline"`
	Classifier rawClassifierConfig `yaml:"classifier"`
	Scorer     rawScorerConfig     `yaml:"scorer"`
	Ledger     rawLedgerConfig     `yaml:"ledger"`
	Profiles   rawProfilesConfig   `yaml:"profiles"`
	Enrich     rawEnrichConfig     `yaml:"enrich"`
	Notifier   rawNotifierConfig   `yaml:"notifier"`
}

type rawSourceConfig struct {
	Path string `yaml:"path"`
}

type rawPipelineConfig struct {
	Workers         int `yaml:"workers"`
	QueueSize       int `yaml:"queue_size"`
	UserConcurrency int `yaml:"user_concurrency"`
}

type rawClassifierConfig struct {
	ExtraTerms  []string `yaml:"extra_terms"`
	MinKeywords int      `yaml:"min_keywords"`
}

type rawScorerConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawLedgerConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisPass string `yaml:"redis_password"`
	RedisDB   int    `yaml:"redis_db"`
	Retention string `yaml:"retention"`
	CleanSpec string `yaml:"cleanup_spec"`
}

type rawProfilesConfig struct {
	Path     string `yaml:"path"`
	VaultKey string `yaml:"vault_key"`
}

type rawEnrichConfig struct {
	Enabled      *bool  `yaml:"enabled"`
	FetchTimeout string `yaml:"fetch_timeout"`
	HostDelay    string `yaml:"host_delay"`
}

type rawNotifierConfig struct {
	Type          string `yaml:"type"`
	TelegramToken string `yaml:"telegram_token"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first,
// so secrets can be referenced as ${JOBBOT_TELEGRAM_TOKEN}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	scorerTimeout := 15 * time.Second // default
	if raw.Scorer.Timeout != "" {
		scorerTimeout, err = time.ParseDuration(raw.Scorer.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse scorer.timeout %q: %w", raw.Scorer.Timeout, err)
		}
	}

	scorerProvider := raw.Scorer.Provider
	if scorerProvider == "" {
		scorerProvider = "lexical"
	}
	scorerBaseURL := raw.Scorer.BaseURL
	if scorerBaseURL == "" {
		scorerBaseURL = defaultOpenAIBaseURL
	}

	ledgerBackend := raw.Ledger.Backend
	if ledgerBackend == "" {
		ledgerBackend = "sqlite"
	}
	ledgerPath := raw.Ledger.Path
	if ledgerPath == "" {
		ledgerPath = "jobbot.db"
	}

	var retention time.Duration // default: keep forever
	if raw.Ledger.Retention != "" {
		retention, err = time.ParseDuration(raw.Ledger.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse ledger.retention %q: %w", raw.Ledger.Retention, err)
		}
	}

	profilesPath := raw.Profiles.Path
	if profilesPath == "" {
		profilesPath = "profiles.db"
	}

	enrichEnabled := true
	if raw.Enrich.Enabled != nil {
		enrichEnabled = *raw.Enrich.Enabled
	}
	fetchTimeout := 15 * time.Second // default
	if raw.Enrich.FetchTimeout != "" {
		fetchTimeout, err = time.ParseDuration(raw.Enrich.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse enrich.fetch_timeout %q: %w", raw.Enrich.FetchTimeout, err)
		}
	}
	hostDelay := 2 * time.Second // default
	if raw.Enrich.HostDelay != "" {
		hostDelay, err = time.ParseDuration(raw.Enrich.HostDelay)
		if err != nil {
			return nil, fmt.Errorf("parse enrich.host_delay %q: %w", raw.Enrich.HostDelay, err)
		}
	}

	notifierType := raw.Notifier.Type
	if notifierType == "" {
		notifierType = "log"
	}

	cfg := &Config{
		Source: SourceConfig{Path: raw.Source.Path},
		Pipeline: PipelineConfig{
			Workers:         raw.Pipeline.Workers,
			QueueSize:       raw.Pipeline.QueueSize,
			UserConcurrency: raw.Pipeline.UserConcurrency,
		},
		Classifier: ClassifierConfig{
			ExtraTerms:  raw.Classifier.ExtraTerms,
			MinKeywords: raw.Classifier.MinKeywords,
		},
		Scorer: ScorerConfig{
			Provider: scorerProvider,
			BaseURL:  scorerBaseURL,
			Model:    raw.Scorer.Model,
			APIKey:   raw.Scorer.APIKey,
			Timeout:  scorerTimeout,
		},
		Ledger: LedgerConfig{
			Backend:   ledgerBackend,
			Path:      ledgerPath,
			RedisAddr: raw.Ledger.RedisAddr,
			RedisPass: raw.Ledger.RedisPass,
			RedisDB:   raw.Ledger.RedisDB,
			Retention: retention,
			CleanSpec: raw.Ledger.CleanSpec,
		},
		Profiles: ProfilesConfig{
			Path:     profilesPath,
			VaultKey: raw.Profiles.VaultKey,
		},
		Enrich: EnrichConfig{
			Enabled:      enrichEnabled,
			FetchTimeout: fetchTimeout,
			HostDelay:    hostDelay,
		},
		Notifier: NotifierConfig{
			Type:          notifierType,
			TelegramToken: raw.Notifier.TelegramToken,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}

	if cfg.Pipeline.Workers < 0 || cfg.Pipeline.QueueSize < 0 || cfg.Pipeline.UserConcurrency < 0 {
		return fmt.Errorf("pipeline concurrency settings must not be negative")
	}

	switch cfg.Scorer.Provider {
	case "lexical":
	case "openai":
		if cfg.Scorer.APIKey == "" {
			return fmt.Errorf("scorer.api_key is required when provider is \"openai\"")
		}
		if cfg.Scorer.Model == "" {
			return fmt.Errorf("scorer.model is required when provider is \"openai\"")
		}
	default:
		return fmt.Errorf("scorer.provider must be \"lexical\" or \"openai\", got %q", cfg.Scorer.Provider)
	}

	switch cfg.Ledger.Backend {
	case "sqlite":
	case "redis":
		if cfg.Ledger.RedisAddr == "" {
			return fmt.Errorf("ledger.redis_addr is required when backend is \"redis\"")
		}
	default:
		return fmt.Errorf("ledger.backend must be \"sqlite\" or \"redis\", got %q", cfg.Ledger.Backend)
	}

	if cfg.Ledger.Retention < 0 {
		return fmt.Errorf("ledger.retention must not be negative, got %v", cfg.Ledger.Retention)
	}
	if cfg.Ledger.CleanSpec != "" && cfg.Ledger.Retention == 0 {
		return fmt.Errorf("ledger.cleanup_spec requires a positive ledger.retention")
	}

	switch cfg.Notifier.Type {
	case "log":
	case "telegram":
		if cfg.Notifier.TelegramToken == "" {
			return fmt.Errorf("notifier.telegram_token is required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notifier.type must be \"log\" or \"telegram\", got %q", cfg.Notifier.Type)
	}

	return nil
}
