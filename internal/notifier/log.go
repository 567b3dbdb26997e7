package notifier

import (
	"context"
	"log/slog"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes alerts to the structured log instead of sending
// them anywhere. Used by replay runs and as a safe default when no bot
// token is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, userID string, posting model.JobPosting, score int) error {
	l.logger.Info("job alert",
		"user", userID,
		"item", posting.Source.Key.String(),
		"title", posting.Title,
		"company", posting.Company,
		"score", score,
		"apply_url", posting.ApplyURL,
	)
	return nil
}
