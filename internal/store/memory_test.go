package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

func TestMemoryLedgerContract(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	key := model.ItemKey{SourceID: "chan", ItemID: "1"}

	seen, err := l.Seen(ctx, key, "u1")
	if err != nil || seen {
		t.Fatalf("Seen on empty ledger = (%v, %v), want (false, nil)", seen, err)
	}

	if err := l.Record(ctx, key, "u1", model.DecisionAlerted); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(ctx, key, "u1", model.DecisionAlerted); err != nil {
		t.Fatalf("duplicate Record: %v", err)
	}
	if err := l.Record(ctx, key, "u1", model.DecisionSuppressed); !errors.Is(err, ErrDecisionConflict) {
		t.Fatalf("conflicting Record error = %v, want ErrDecisionConflict", err)
	}

	seen, err = l.Seen(ctx, key, "u1")
	if err != nil || !seen {
		t.Fatalf("Seen after Record = (%v, %v), want (true, nil)", seen, err)
	}

	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}

	any, err := l.SeenAny(ctx, key, []string{"u1", "u2"})
	if err != nil || any {
		t.Fatalf("SeenAny with uncovered user = (%v, %v), want (false, nil)", any, err)
	}

	if err := l.Record(ctx, key, model.TombstoneUser, model.DecisionSkipped); err != nil {
		t.Fatalf("Record tombstone: %v", err)
	}
	any, err = l.SeenAny(ctx, key, []string{"u1", "u2"})
	if err != nil || !any {
		t.Fatalf("SeenAny with tombstone = (%v, %v), want (true, nil)", any, err)
	}
}

func TestMemoryLedgerRememberContent(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()
	first := model.ItemKey{SourceID: "chan-a", ItemID: "1"}
	crossPost := model.ItemKey{SourceID: "chan-b", ItemID: "2"}

	got, dup, err := l.RememberContent(ctx, "h", first)
	if err != nil || dup || got != first {
		t.Fatalf("first RememberContent = (%v, %v, %v), want (first, false, nil)", got, dup, err)
	}

	got, dup, err = l.RememberContent(ctx, "h", first)
	if err != nil || dup {
		t.Fatalf("redelivered RememberContent = (%v, %v, %v), want (first, false, nil)", got, dup, err)
	}

	got, dup, err = l.RememberContent(ctx, "h", crossPost)
	if err != nil {
		t.Fatalf("cross-post RememberContent: %v", err)
	}
	if !dup || got != first {
		t.Errorf("cross-post = (%v, %v), want (%v, true)", got, dup, first)
	}
}
