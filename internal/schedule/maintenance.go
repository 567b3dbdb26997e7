// Package schedule runs the periodic maintenance jobs of the daemon.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// Maintenance owns the cron runner for ledger retention cleanup.
type Maintenance struct {
	cron      *cron.Cron
	ledger    model.Ledger
	retention time.Duration
	logger    *slog.Logger
}

// NewMaintenance schedules a ledger Cleanup on the given cron spec.
// Retention must be positive; callers with retention disabled should not
// construct a Maintenance at all.
func NewMaintenance(spec string, ledger model.Ledger, retention time.Duration, logger *slog.Logger) (*Maintenance, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %v", retention)
	}

	m := &Maintenance{
		cron:      cron.New(),
		ledger:    ledger,
		retention: retention,
		logger:    logger,
	}

	if _, err := m.cron.AddFunc(spec, m.cleanup); err != nil {
		return nil, fmt.Errorf("parse cleanup spec %q: %w", spec, err)
	}
	return m, nil
}

// Start launches the cron runner in its own goroutine.
func (m *Maintenance) Start() {
	m.logger.Info("maintenance scheduler started", "retention", m.retention)
	m.cron.Start()
}

// Stop halts the runner and waits for an in-flight cleanup to finish.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Info("maintenance scheduler stopped")
}

func (m *Maintenance) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := m.ledger.Cleanup(ctx, m.retention)
	if err != nil {
		m.logger.Error("ledger cleanup failed", "error", err)
		return
	}
	m.logger.Info("ledger cleanup complete", "removed", removed, "older_than", m.retention)
}
