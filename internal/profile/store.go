// Package profile owns user profiles and their CV documents. The
// pipeline never touches this store directly; it works on deep-copied
// snapshots so a mid-run edit cannot change decisions already in flight.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// Store persists user profiles and encrypted CV documents in SQLite.
type Store struct {
	db    *sql.DB
	vault *Vault
}

// NewStore opens (or creates) the profile database at dbPath. When vault
// is nil, CV documents are stored unencrypted; pass a vault in any
// deployment that holds real CVs.
func NewStore(dbPath string, vault *Vault) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening profile db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging profile db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id           TEXT PRIMARY KEY,
		required_keywords TEXT NOT NULL DEFAULT '[]',
		excluded_keywords TEXT NOT NULL DEFAULT '[]',
		location_pref     TEXT NOT NULL DEFAULT '',
		remote_pref       TEXT NOT NULL DEFAULT 'any',
		seniority_pref    TEXT NOT NULL DEFAULT 'unknown',
		threshold         INTEGER NOT NULL DEFAULT 70,
		active            INTEGER NOT NULL DEFAULT 1,
		sources           TEXT NOT NULL DEFAULT '[]',
		updated_at        INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS documents (
		user_id    TEXT PRIMARY KEY,
		cv         BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating profile tables: %w", err)
	}

	return &Store{db: db, vault: vault}, nil
}

// Upsert inserts or replaces a profile. UpdatedAt is set to now.
func (s *Store) Upsert(ctx context.Context, p model.UserProfile) error {
	required, err := json.Marshal(p.RequiredKeywords)
	if err != nil {
		return fmt.Errorf("encoding required keywords: %w", err)
	}
	excluded, err := json.Marshal(p.ExcludedKeywords)
	if err != nil {
		return fmt.Errorf("encoding excluded keywords: %w", err)
	}
	sources, err := json.Marshal(p.Sources)
	if err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, required_keywords, excluded_keywords, location_pref,
			remote_pref, seniority_pref, threshold, active, sources, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			required_keywords = excluded.required_keywords,
			excluded_keywords = excluded.excluded_keywords,
			location_pref     = excluded.location_pref,
			remote_pref       = excluded.remote_pref,
			seniority_pref    = excluded.seniority_pref,
			threshold         = excluded.threshold,
			active            = excluded.active,
			sources           = excluded.sources,
			updated_at        = excluded.updated_at`,
		p.UserID, string(required), string(excluded), p.LocationPref,
		string(p.RemotePreference), string(p.SeniorityPref), p.Threshold,
		boolToInt(p.Active), string(sources), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.UserID, err)
	}
	return nil
}

// Get returns the profile for userID, or sql.ErrNoRows if absent.
func (s *Store) Get(ctx context.Context, userID string) (model.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, required_keywords, excluded_keywords, location_pref,
			remote_pref, seniority_pref, threshold, active, sources, updated_at
		 FROM users WHERE user_id = ?`, userID)
	return scanProfile(row)
}

// Delete removes a profile and its document.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("deleting profile %s: %w", userID, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("deleting document for %s: %w", userID, err)
	}
	return nil
}

// List returns all profiles, active and paused, ordered by user ID.
func (s *Store) List(ctx context.Context) ([]model.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, required_keywords, excluded_keywords, location_pref,
			remote_pref, seniority_pref, threshold, active, sources, updated_at
		 FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []model.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Snapshot returns deep copies of every profile, for the pipeline to
// work on without racing concurrent edits.
func (s *Store) Snapshot(ctx context.Context) ([]model.UserProfile, error) {
	profiles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserProfile, len(profiles))
	for i, p := range profiles {
		out[i] = copyProfile(p)
	}
	return out, nil
}

// SetActive pauses or resumes a user.
func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	return s.update(ctx, userID, "active = ?", boolToInt(active))
}

// SetThreshold changes a user's minimum alert score.
func (s *Store) SetThreshold(ctx context.Context, userID string, threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("threshold %d out of range 0..100", threshold)
	}
	return s.update(ctx, userID, "threshold = ?", threshold)
}

// SetKeywords replaces a user's required and excluded keyword lists.
func (s *Store) SetKeywords(ctx context.Context, userID string, required, excluded []string) error {
	req, err := json.Marshal(required)
	if err != nil {
		return fmt.Errorf("encoding required keywords: %w", err)
	}
	exc, err := json.Marshal(excluded)
	if err != nil {
		return fmt.Errorf("encoding excluded keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET required_keywords = ?, excluded_keywords = ?, updated_at = ? WHERE user_id = ?",
		string(req), string(exc), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("updating keywords for %s: %w", userID, err)
	}
	return checkUpdated(res, userID)
}

// SetDocument stores (and when a vault is configured, encrypts) the
// user's CV text.
func (s *Store) SetDocument(ctx context.Context, userID, text string) error {
	blob := []byte(text)
	if s.vault != nil {
		sealed, err := s.vault.Seal(blob)
		if err != nil {
			return fmt.Errorf("encrypting document for %s: %w", userID, err)
		}
		blob = sealed
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (user_id, cv, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET cv = excluded.cv, updated_at = excluded.updated_at`,
		userID, blob, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storing document for %s: %w", userID, err)
	}
	return nil
}

// Document returns the user's CV text, or model.ErrNoDocument when none
// is stored.
func (s *Store) Document(ctx context.Context, userID string) (string, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT cv FROM documents WHERE user_id = ?", userID).Scan(&blob)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user %s: %w", userID, model.ErrNoDocument)
	}
	if err != nil {
		return "", fmt.Errorf("reading document for %s: %w", userID, err)
	}

	if s.vault != nil {
		plain, err := s.vault.Open(blob)
		if err != nil {
			return "", fmt.Errorf("decrypting document for %s: %w", userID, err)
		}
		return string(plain), nil
	}
	return string(blob), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) update(ctx context.Context, userID, setClause string, value any) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET "+setClause+", updated_at = ? WHERE user_id = ?",
		value, time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", userID, err)
	}
	return checkUpdated(res, userID)
}

func checkUpdated(res sql.Result, userID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating profile %s: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("no such user: %s", userID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (model.UserProfile, error) {
	var p model.UserProfile
	var required, excluded, sources, remote, seniority string
	var active int

	err := row.Scan(&p.UserID, &required, &excluded, &p.LocationPref,
		&remote, &seniority, &p.Threshold, &active, &sources, &p.UpdatedAt)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("scanning profile: %w", err)
	}

	if err := json.Unmarshal([]byte(required), &p.RequiredKeywords); err != nil {
		return model.UserProfile{}, fmt.Errorf("decoding required keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(excluded), &p.ExcludedKeywords); err != nil {
		return model.UserProfile{}, fmt.Errorf("decoding excluded keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &p.Sources); err != nil {
		return model.UserProfile{}, fmt.Errorf("decoding sources: %w", err)
	}

	p.RemotePreference = model.RemotePref(remote)
	p.SeniorityPref = model.Seniority(seniority)
	p.Active = active != 0
	return p, nil
}

func copyProfile(p model.UserProfile) model.UserProfile {
	out := p
	out.RequiredKeywords = append([]string(nil), p.RequiredKeywords...)
	out.ExcludedKeywords = append([]string(nil), p.ExcludedKeywords...)
	out.Sources = append([]string(nil), p.Sources...)
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
