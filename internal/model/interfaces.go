package model

import (
	"context"
	"time"
)

// Ledger is the durable record of terminal decisions, keyed by
// (item, user). It is what makes the pipeline exactly-once per pair.
type Ledger interface {
	// Seen reports whether a decision has been recorded for the pair.
	Seen(ctx context.Context, key ItemKey, userID string) (bool, error)

	// SeenAny reports whether further work on the item is pointless:
	// either a non-job tombstone exists, or every listed user already
	// has a record. Purely an optimization; Seen is authoritative.
	SeenAny(ctx context.Context, key ItemKey, userIDs []string) (bool, error)

	// Record writes a terminal decision. Recording the same decision
	// twice is a no-op; a conflicting decision returns
	// an error and leaves the original untouched.
	Record(ctx context.Context, key ItemKey, userID string, decision Decision) error

	// RememberContent durably registers the content hash of an item and
	// returns the first item recorded with that hash. The bool is true
	// when a different item already carries the same content, so the
	// caller can treat the new item as a cross-posted duplicate.
	RememberContent(ctx context.Context, hash string, key ItemKey) (ItemKey, bool, error)

	// Cleanup deletes records older than the given duration and returns
	// the number removed.
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)

	Close() error
}

// Notifier delivers an alert for a single (job, user) pair.
type Notifier interface {
	Notify(ctx context.Context, userID string, posting JobPosting, score int) error
}

// Similarity returns the semantic closeness of two documents in [0,1].
// Implementations may be remote and slow; callers bound them with a
// context deadline. An error means the pair must be deferred, never
// scored as zero.
type Similarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// DetailFetcher fetches extracted text for a job detail page.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, url string) (string, error)
}
