// Package store provides durable Ledger implementations. The ledger is
// the single source of truth for which (item, user) pairs already have a
// terminal decision; everything upstream of it is safe to re-run.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// ErrDecisionConflict is returned when a pair already has a recorded
// decision that differs from the one being written. The original record
// always wins.
var ErrDecisionConflict = errors.New("conflicting decision already recorded")

// SQLiteLedger stores decisions in a local SQLite database.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) the database at dbPath and ensures
// the decisions table exists.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTables := `CREATE TABLE IF NOT EXISTS decisions (
		source_id  TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		decision   TEXT NOT NULL,
		decided_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source_id, item_id, user_id)
	);
	CREATE TABLE IF NOT EXISTS content_hashes (
		hash      TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		item_id   TEXT NOT NULL,
		seen_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger tables: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// sqliteTimeLayout matches the text CURRENT_TIMESTAMP writes, so string
// comparison against stored timestamps is sound. Timestamps are always
// rendered in UTC.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

// Seen reports whether the pair already has a recorded decision.
func (s *SQLiteLedger) Seen(ctx context.Context, key model.ItemKey, userID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM decisions WHERE source_id = ? AND item_id = ? AND user_id = ?",
		key.SourceID, key.ItemID, userID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking decision for %s/%s: %w", key, userID, err)
	}
	return true, nil
}

// SeenAny reports whether the item needs no further work: a tombstone
// exists, or every listed user already has a record. With an empty user
// list only the tombstone check applies.
func (s *SQLiteLedger) SeenAny(ctx context.Context, key model.ItemKey, userIDs []string) (bool, error) {
	tombstoned, err := s.Seen(ctx, key, model.TombstoneUser)
	if err != nil {
		return false, err
	}
	if tombstoned {
		return true, nil
	}
	if len(userIDs) == 0 {
		return false, nil
	}

	for _, userID := range userIDs {
		seen, err := s.Seen(ctx, key, userID)
		if err != nil {
			return false, err
		}
		if !seen {
			return false, nil
		}
	}
	return true, nil
}

// Record writes a terminal decision for the pair. Re-recording the same
// decision is a no-op; a different decision returns ErrDecisionConflict
// and leaves the original untouched.
func (s *SQLiteLedger) Record(ctx context.Context, key model.ItemKey, userID string, decision model.Decision) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (source_id, item_id, user_id, decision) VALUES (?, ?, ?, ?)
		 ON CONFLICT (source_id, item_id, user_id) DO NOTHING`,
		key.SourceID, key.ItemID, userID, string(decision))
	if err != nil {
		return fmt.Errorf("recording decision for %s/%s: %w", key, userID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording decision for %s/%s: %w", key, userID, err)
	}
	if inserted > 0 {
		return nil
	}

	// The insert was ignored; check the existing decision matches.
	var existing string
	err = s.db.QueryRowContext(ctx,
		"SELECT decision FROM decisions WHERE source_id = ? AND item_id = ? AND user_id = ?",
		key.SourceID, key.ItemID, userID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("reading existing decision for %s/%s: %w", key, userID, err)
	}
	if existing != string(decision) {
		return fmt.Errorf("pair %s/%s has %q, refusing %q: %w",
			key, userID, existing, decision, ErrDecisionConflict)
	}
	return nil
}

// RememberContent registers the content hash for an item. The first
// writer wins; a later call with a different item key reports the item
// as a duplicate of the first.
func (s *SQLiteLedger) RememberContent(ctx context.Context, hash string, key model.ItemKey) (model.ItemKey, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO content_hashes (hash, source_id, item_id) VALUES (?, ?, ?)
		 ON CONFLICT (hash) DO NOTHING`,
		hash, key.SourceID, key.ItemID)
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("registering content hash for %s: %w", key, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("registering content hash for %s: %w", key, err)
	}
	if inserted > 0 {
		return key, false, nil
	}

	var first model.ItemKey
	err = s.db.QueryRowContext(ctx,
		"SELECT source_id, item_id FROM content_hashes WHERE hash = ?",
		hash).Scan(&first.SourceID, &first.ItemID)
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("reading content hash owner for %s: %w", key, err)
	}
	return first, first != key, nil
}

// Cleanup deletes decisions and content hashes older than the given
// duration and returns the total number removed. The cutoff is compared
// in UTC because CURRENT_TIMESTAMP writes UTC text.
func (s *SQLiteLedger) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := sqliteTime(time.Now().Add(-olderThan))

	res, err := s.db.ExecContext(ctx, "DELETE FROM decisions WHERE decided_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up decisions older than %v: %w", olderThan, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleaning up decisions: %w", err)
	}

	res, err = s.db.ExecContext(ctx, "DELETE FROM content_hashes WHERE seen_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up content hashes older than %v: %w", olderThan, err)
	}
	hashesRemoved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleaning up content hashes: %w", err)
	}

	return removed + hashesRemoved, nil
}

// DecisionRow is one ledger entry as read back for the audit surface.
type DecisionRow struct {
	Key       model.ItemKey
	UserID    string
	Decision  model.Decision
	DecidedAt time.Time
}

// DecisionsForUser returns the most recent decisions recorded for the
// given user, newest first, up to limit.
func (s *SQLiteLedger) DecisionsForUser(ctx context.Context, userID string, limit int) ([]DecisionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, item_id, decision, decided_at FROM decisions
		 WHERE user_id = ? ORDER BY decided_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing decisions for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		r := DecisionRow{UserID: userID}
		var decision string
		if err := rows.Scan(&r.Key.SourceID, &r.Key.ItemID, &decision, &r.DecidedAt); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		r.Decision = model.Decision(decision)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
