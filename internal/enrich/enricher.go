package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/retry"
)

// Enrichment is best-effort: one fetch, one retry, and on failure the
// message proceeds unenriched. It must never be the reason a message is
// dropped.
const (
	maxFetchRetries = 1 // two attempts total
	retryBaseDelay  = 2 * time.Second
)

// Enricher augments a message's text with content fetched from its
// embedded application link.
type Enricher struct {
	fetcher model.DetailFetcher
	timeout time.Duration // per-attempt bound
	logger  *slog.Logger
}

// NewEnricher wires an enricher around a detail fetcher. timeout bounds
// each individual fetch attempt.
func NewEnricher(fetcher model.DetailFetcher, timeout time.Duration, logger *slog.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
	}
}

// Enrich returns msg with EnrichedText extended by the fetched detail, or
// msg unchanged when there is no link or the fetch fails.
func (e *Enricher) Enrich(ctx context.Context, msg model.Message) model.Message {
	if msg.URL == "" {
		return msg
	}
	if BlockedDomain(msg.URL) {
		e.logger.Debug("skipping blocked domain", "item", msg.Key, "url", msg.URL)
		return msg
	}

	var detail string
	err := retry.Do(ctx, maxFetchRetries, retryBaseDelay, e.logger, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		text, err := e.fetcher.FetchDetail(attemptCtx, msg.URL)
		if err != nil {
			return err
		}
		detail = text
		return nil
	})
	if err != nil {
		e.logger.Warn("detail fetch failed, continuing unenriched",
			"item", msg.Key,
			"url", msg.URL,
			"error", err,
		)
		return msg
	}

	// Only append detail that adds something beyond the original text.
	if detail == "" || len(detail) <= len(msg.Text)/2 {
		return msg
	}

	msg.EnrichedText = msg.Text + "\n\n" + detail
	e.logger.Debug("message enriched",
		"item", msg.Key,
		"original_len", len(msg.Text),
		"enriched_len", len(msg.EnrichedText),
	)
	return msg
}
