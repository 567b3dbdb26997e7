package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// RedisLedger stores decisions in Redis, one key per (item, user) pair.
// Retention is handled by per-key TTLs set at write time, so Cleanup is
// a no-op. Intended for deployments where several pipeline instances
// share one ledger.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration // 0 means keep forever
}

// NewRedisLedger connects to Redis at addr and verifies the connection.
// ttl of zero disables expiry.
func NewRedisLedger(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}

	return &RedisLedger{client: client, ttl: ttl}, nil
}

func decisionKey(key model.ItemKey, userID string) string {
	return fmt.Sprintf("decision:%s:%s", key, userID)
}

// Seen reports whether the pair already has a recorded decision.
func (r *RedisLedger) Seen(ctx context.Context, key model.ItemKey, userID string) (bool, error) {
	n, err := r.client.Exists(ctx, decisionKey(key, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking decision for %s/%s: %w", key, userID, err)
	}
	return n > 0, nil
}

// SeenAny reports whether the item needs no further work: a tombstone
// exists, or every listed user already has a record.
func (r *RedisLedger) SeenAny(ctx context.Context, key model.ItemKey, userIDs []string) (bool, error) {
	tombstoned, err := r.Seen(ctx, key, model.TombstoneUser)
	if err != nil {
		return false, err
	}
	if tombstoned {
		return true, nil
	}
	if len(userIDs) == 0 {
		return false, nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, decisionKey(key, userID))
	}
	n, err := r.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("checking decisions for %s: %w", key, err)
	}
	return n == int64(len(keys)), nil
}

// Record writes a terminal decision for the pair. Re-recording the same
// decision is a no-op; a different decision returns ErrDecisionConflict.
func (r *RedisLedger) Record(ctx context.Context, key model.ItemKey, userID string, decision model.Decision) error {
	k := decisionKey(key, userID)

	set, err := r.client.SetNX(ctx, k, string(decision), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("recording decision for %s/%s: %w", key, userID, err)
	}
	if set {
		return nil
	}

	existing, err := r.client.Get(ctx, k).Result()
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
// writer wins, enforced by SETNX; the item key is stored as JSON so it
// survives IDs containing the separator character.
func (r *RedisLedger) RememberContent(ctx context.Context, hash string, key model.ItemKey) (model.ItemKey, bool, error) {
	k := "content:" + hash

	payload, err := json.Marshal(key)
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("encoding content hash owner %s: %w", key, err)
	}

	set, err := r.client.SetNX(ctx, k, payload, r.ttl).Result()
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("registering content hash for %s: %w", key, err)
	}
	if set {
		return key, false, nil
	}

	existing, err := r.client.Get(ctx, k).Result()
	if err != nil {
		return model.ItemKey{}, false, fmt.Errorf("reading content hash owner for %s: %w", key, err)
	}
	var first model.ItemKey
	if err := json.Unmarshal([]byte(existing), &first); err != nil {
		return model.ItemKey{}, false, fmt.Errorf("decoding content hash owner for %s: %w", key, err)
	}
	return first, first != key, nil
}

// Cleanup is a no-op: Redis expires keys via the TTL set at write time.
func (r *RedisLedger) Cleanup(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

// Close closes the underlying Redis client.
func (r *RedisLedger) Close() error {
	return r.client.Close()
}
