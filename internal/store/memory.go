package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// MemoryLedger is an in-process Ledger for tests and dry-run replays.
// Nothing survives the process.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	hashes  map[string]memoryHash
}

type memoryEntry struct {
	decision  model.Decision
	decidedAt time.Time
}

type memoryHash struct {
	first  model.ItemKey
	seenAt time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]memoryEntry),
		hashes:  make(map[string]memoryHash),
	}
}

func (m *MemoryLedger) Seen(_ context.Context, key model.ItemKey, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[decisionKey(key, userID)]
	return ok, nil
}

func (m *MemoryLedger) SeenAny(_ context.Context, key model.ItemKey, userIDs []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[decisionKey(key, model.TombstoneUser)]; ok {
		return true, nil
	}
	if len(userIDs) == 0 {
		return false, nil
	}
	for _, userID := range userIDs {
		if _, ok := m.entries[decisionKey(key, userID)]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (m *MemoryLedger) Record(_ context.Context, key model.ItemKey, userID string, decision model.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := decisionKey(key, userID)
	if existing, ok := m.entries[k]; ok {
		if existing.decision != decision {
			return fmt.Errorf("pair %s/%s has %q, refusing %q: %w",
				key, userID, existing.decision, decision, ErrDecisionConflict)
		}
		return nil
	}
	m.entries[k] = memoryEntry{decision: decision, decidedAt: time.Now()}
	return nil
}

func (m *MemoryLedger) RememberContent(_ context.Context, hash string, key model.ItemKey) (model.ItemKey, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.hashes[hash]; ok {
		return h.first, h.first != key, nil
	}
	m.hashes[hash] = memoryHash{first: key, seenAt: time.Now()}
	return key, false, nil
}

func (m *MemoryLedger) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var removed int64
	for k, e := range m.entries {
		if e.decidedAt.Before(cutoff) {
			delete(m.entries, k)
			removed++
		}
	}
	for h, e := range m.hashes {
		if e.seenAt.Before(cutoff) {
			delete(m.hashes, h)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of recorded decisions.
func (m *MemoryLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryLedger) Close() error {
	return nil
}
