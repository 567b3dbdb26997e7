package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
source:
  path: messages.ndjson
pipeline:
  workers: 8
  queue_size: 128
scorer:
  provider: lexical
  timeout: 5s
ledger:
  backend: sqlite
  path: ledger.db
  retention: 720h
  cleanup_spec: "0 3 * * *"
profiles:
  path: users.db
enrich:
  fetch_timeout: 10s
  host_delay: 3s
notifier:
  type: log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "messages.ndjson" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
	if cfg.Pipeline.Workers != 8 || cfg.Pipeline.QueueSize != 128 {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Scorer.Provider != "lexical" || cfg.Scorer.Timeout != 5*time.Second {
		t.Errorf("Scorer = %+v", cfg.Scorer)
	}
	if cfg.Ledger.Retention != 720*time.Hour || cfg.Ledger.CleanSpec != "0 3 * * *" {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if cfg.Enrich.FetchTimeout != 10*time.Second || cfg.Enrich.HostDelay != 3*time.Second {
		t.Errorf("Enrich = %+v", cfg.Enrich)
	}
	if !cfg.Enrich.Enabled {
		t.Error("Enrich.Enabled should default to true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "source:\n  path: '-'\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scorer.Provider != "lexical" {
		t.Errorf("Scorer.Provider = %q, want lexical", cfg.Scorer.Provider)
	}
	if cfg.Ledger.Backend != "sqlite" || cfg.Ledger.Path != "jobbot.db" {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
	if cfg.Ledger.Retention != 0 {
		t.Errorf("Retention = %v, want 0 (keep forever)", cfg.Ledger.Retention)
	}
	if cfg.Notifier.Type != "log" {
		t.Errorf("Notifier.Type = %q, want log", cfg.Notifier.Type)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("JOBBOT_TEST_TOKEN", "secret-token")
	cfg, err := Load(writeConfig(t, `
source:
  path: '-'
notifier:
  type: telegram
  telegram_token: ${JOBBOT_TEST_TOKEN}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifier.TelegramToken != "secret-token" {
		t.Errorf("TelegramToken = %q, want expanded env value", cfg.Notifier.TelegramToken)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "source: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing source path",
			content: "notifier:\n  type: log\n",
		},
		{
			name: "openai without api key",
			content: `
source:
  path: '-'
scorer:
  provider: openai
  model: text-embedding-3-small
`,
		},
		{
			name: "unknown ledger backend",
			content: `
source:
  path: '-'
ledger:
  backend: dynamo
`,
		},
		{
			name: "redis without addr",
			content: `
source:
  path: '-'
ledger:
  backend: redis
`,
		},
		{
			name: "telegram without token",
			content: `
source:
  path: '-'
notifier:
  type: telegram
`,
		},
		{
			name: "cleanup spec without retention",
			content: `
source:
  path: '-'
ledger:
  cleanup_spec: "@daily"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load: expected validation error")
			}
		})
	}
}
