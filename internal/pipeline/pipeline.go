// Package pipeline wires the processing stages together: it drains a
// message source through a bounded work queue, runs the shared per-item
// stages once, and fans out scoring and dispatch per user. The ledger is
// the only authority on what has been processed; everything here is safe
// to re-run.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cryoneth/job-bot-telegram/internal/extract"
	"github.com/cryoneth/job-bot-telegram/internal/filter"
	"github.com/cryoneth/job-bot-telegram/internal/ingest"
	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/store"
)

// A stream of persistently unreadable records aborts the producer rather
// than spinning on the same error.
const maxConsecutiveBadRecords = 25

// ProfileSource is the read surface the pipeline needs from the profile
// store: consistent snapshots, fresh single reads, and CV documents.
type ProfileSource interface {
	Snapshot(ctx context.Context) ([]model.UserProfile, error)
	Get(ctx context.Context, userID string) (model.UserProfile, error)
	Document(ctx context.Context, userID string) (string, error)
}

// Enricher augments a message with fetched detail text.
type Enricher interface {
	Enrich(ctx context.Context, msg model.Message) model.Message
}

// Classifier decides job/not-job for a message text.
type Classifier interface {
	Classify(text string) (bool, int)
}

// Scorer computes the per-pair score breakdown.
type Scorer interface {
	Score(ctx context.Context, posting model.JobPosting, profile model.UserProfile, doc string) (model.Breakdown, error)
}

// Config holds the pipeline's concurrency knobs.
type Config struct {
	Workers         int // item workers draining the queue
	QueueSize       int // bounded queue; full queue blocks the producer
	UserConcurrency int // concurrent per-user branches within one item
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.UserConcurrency <= 0 {
		c.UserConcurrency = 4
	}
	return c
}

// Deps are the pipeline's collaborators. Enricher may be nil to skip
// detail enrichment (replay runs).
type Deps struct {
	Ledger     model.Ledger
	Profiles   ProfileSource
	Enricher   Enricher
	Classifier Classifier
	Scorer     Scorer
	Notifier   model.Notifier
	Logger     *slog.Logger
}

// Pipeline processes messages end to end: normalize, dedup, enrich,
// classify, extract, then score/filter/dispatch per user.
type Pipeline struct {
	cfg        Config
	ledger     model.Ledger
	profiles   ProfileSource
	enricher   Enricher
	classifier Classifier
	scorer     Scorer
	notifier   model.Notifier
	logger     *slog.Logger
}

func New(cfg Config, d Deps) *Pipeline {
	return &Pipeline{
		cfg:        cfg.withDefaults(),
		ledger:     d.Ledger,
		profiles:   d.Profiles,
		enricher:   d.Enricher,
		classifier: d.Classifier,
		scorer:     d.Scorer,
		notifier:   d.Notifier,
		logger:     d.Logger,
	}
}

// Run drains the source until io.EOF or context cancellation. Item-level
// failures are logged and skipped; only infrastructure-level problems
// (cancellation, a dead producer) end the run with an error.
func (p *Pipeline) Run(ctx context.Context, src ingest.Source) error {
	queue := make(chan model.RawMessage, p.cfg.QueueSize)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		return p.produce(gctx, src, queue)
	})

	for i := 0; i < p.cfg.Workers; i++ {
		g.Go(func() error {
			for raw := range queue {
				if err := p.processItem(gctx, raw); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					p.logger.Error("item processing failed, will retry on redelivery",
						"source", raw.SourceID, "item", raw.ItemID, "error", err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (p *Pipeline) produce(ctx context.Context, src ingest.Source, queue chan<- model.RawMessage) error {
	badRecords := 0
	for {
		raw, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// A dead stream repeats the same error forever; abort instead
			// of burning the bad-record budget on it.
			if errors.Is(err, ingest.ErrStreamFailed) {
				return err
			}
			p.logger.Warn("skipping unreadable record", "error", err)
			badRecords++
			if badRecords >= maxConsecutiveBadRecords {
				return errors.New("source produced too many consecutive unreadable records")
			}
			continue
		}
		badRecords = 0

		select {
		case queue <- raw:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processItem runs the shared stages for one message and fans out to the
// per-user branches. An error means nothing terminal was recorded for the
// remaining users and the item is safe to redeliver.
func (p *Pipeline) processItem(ctx context.Context, raw model.RawMessage) error {
	msg := ingest.Normalize(raw)
	logger := p.logger.With("item", msg.Key.String())

	snap, err := p.profiles.Snapshot(ctx)
	if err != nil {
		return err
	}

	candidates := make([]model.UserProfile, 0, len(snap))
	userIDs := make([]string, 0, len(snap))
	for _, prof := range snap {
		if prof.Active && prof.WatchesSource(msg.Key.SourceID) {
			candidates = append(candidates, prof)
			userIDs = append(userIDs, prof.UserID)
		}
	}

	seen, err := p.ledger.SeenAny(ctx, msg.Key, userIDs)
	if err != nil {
		return err
	}
	if seen {
		logger.Debug("item already fully processed")
		return nil
	}

	if len(candidates) == 0 {
		logger.Debug("no active users watch this source")
		return nil
	}

	// Same content cross-posted under a different item key is tombstoned
	// so users are not alerted twice for one underlying posting. The hash
	// lives in the ledger, so the suppression survives restarts.
	hash := ingest.ContentHash(msg.Text)
	firstKey, dup, err := p.ledger.RememberContent(ctx, hash, msg.Key)
	if err != nil {
		return err
	}
	if dup {
		logger.Info("duplicate content, skipping item", "first_item", firstKey.String())
		return p.recordTombstone(ctx, msg.Key, logger)
	}

	if p.enricher != nil {
		msg = p.enricher.Enrich(ctx, msg)
	}

	text := msg.Text
	if msg.EnrichedText != "" {
		text = msg.EnrichedText
	}

	isJob, hits := p.classifier.Classify(text)
	if !isJob {
		logger.Debug("not a job posting", "lexicon_hits", hits)
		return p.recordTombstone(ctx, msg.Key, logger)
	}

	posting := extract.Extract(msg)
	logger.Debug("posting extracted",
		"title", posting.Title, "company", posting.Company, "skills", len(posting.Skills))

	// One user's failure never blocks another's; branches log their own
	// problems and always return nil.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.UserConcurrency)
	for _, prof := range candidates {
		prof := prof
		g.Go(func() error {
			p.processUser(gctx, msg.Key, posting, prof)
			return nil
		})
	}
	return g.Wait()
}

// processUser scores, filters, and dispatches one (item, user) pair.
func (p *Pipeline) processUser(ctx context.Context, key model.ItemKey, posting model.JobPosting, prof model.UserProfile) {
	logger := p.logger.With("item", key.String(), "user", prof.UserID)

	seen, err := p.ledger.Seen(ctx, key, prof.UserID)
	if err != nil {
		logger.Error("ledger check failed", "error", err)
		return
	}
	if seen {
		return
	}

	doc, err := p.profiles.Document(ctx, prof.UserID)
	if errors.Is(err, model.ErrNoDocument) {
		logger.Info("user has no CV document, skipping")
		return
	}
	if err != nil {
		logger.Error("reading CV document failed", "error", err)
		return
	}

	breakdown, err := p.scorer.Score(ctx, posting, prof, doc)
	if err != nil {
		// Deferred, not scored zero: no record, the pair is retried on
		// the next delivery of this item.
		logger.Warn("scoring failed, deferring pair", "error", err)
		return
	}

	// Re-read the profile so a pause or edit that landed mid-run is
	// honored at the filter stage.
	fresh, err := p.profiles.Get(ctx, prof.UserID)
	if err != nil {
		logger.Warn("profile gone before filter stage, skipping", "error", err)
		return
	}

	res := model.MatchResult{
		UserID:   fresh.UserID,
		Key:      key,
		Score:    breakdown.Total,
		Decision: filter.Evaluate(posting, fresh, breakdown.Total),
	}
	p.dispatch(ctx, res, posting, breakdown, logger)
}

// dispatch delivers the alert (when warranted) and records the terminal
// decision. Send-then-record: a failed send leaves no record, so the pair
// is retried later; a failed record after a successful send is the one
// duplicate-risk window and is logged loudly.
func (p *Pipeline) dispatch(ctx context.Context, res model.MatchResult, posting model.JobPosting, breakdown model.Breakdown, logger *slog.Logger) {
	if res.Decision == model.DecisionAlerted {
		if err := p.notifier.Notify(ctx, res.UserID, posting, res.Score); err != nil {
			logger.Warn("alert delivery failed, no decision recorded", "error", err)
			return
		}
	}

	if err := p.ledger.Record(ctx, res.Key, res.UserID, res.Decision); err != nil {
		switch {
		case errors.Is(err, store.ErrDecisionConflict):
			logger.Error("conflicting decision already recorded", "decision", res.Decision, "error", err)
		case res.Decision == model.DecisionAlerted:
			logger.Error("recording after send failed, duplicate alert possible on redelivery", "error", err)
		default:
			logger.Error("recording decision failed", "decision", res.Decision, "error", err)
		}
		return
	}

	logger.Info("decision recorded",
		"decision", res.Decision,
		"score", res.Score,
		"semantic", breakdown.Semantic,
		"keyword", breakdown.Keyword,
		"rules", breakdown.Rules,
	)
}

func (p *Pipeline) recordTombstone(ctx context.Context, key model.ItemKey, logger *slog.Logger) error {
	if err := p.ledger.Record(ctx, key, model.TombstoneUser, model.DecisionSkipped); err != nil {
		logger.Error("recording tombstone failed", "error", err)
		return err
	}
	return nil
}
