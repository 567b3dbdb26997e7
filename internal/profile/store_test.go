package profile

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	vault, err := NewVault(key)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}
	s, err := NewStore(filepath.Join(t.TempDir(), "profiles.db"), vault)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(userID string) model.UserProfile {
	return model.UserProfile{
		UserID:           userID,
		RequiredKeywords: []string{"go"},
		ExcludedKeywords: []string{"crypto"},
		LocationPref:     "Berlin",
		RemotePreference: model.RemoteYes,
		SeniorityPref:    model.SenioritySenior,
		Threshold:        70,
		Active:           true,
		Sources:          []string{"golang_jobs"},
	}
}

func TestUpsertGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testProfile("u1")
	if err := s.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != want.UserID || got.Threshold != want.Threshold ||
		got.LocationPref != want.LocationPref || !got.Active {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
	if len(got.RequiredKeywords) != 1 || got.RequiredKeywords[0] != "go" {
		t.Errorf("RequiredKeywords = %v, want [go]", got.RequiredKeywords)
	}
	if got.RemotePreference != model.RemoteYes || got.SeniorityPref != model.SenioritySenior {
		t.Errorf("preferences = %v/%v, want yes/senior", got.RemotePreference, got.SeniorityPref)
	}

	// Upsert replaces.
	want.Threshold = 80
	if err := s.Upsert(ctx, want); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err = s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Threshold != 80 {
		t.Errorf("Threshold = %d, want 80", got.Threshold)
	}
}

func TestSettersAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, testProfile("u1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := s.SetActive(ctx, "u1", false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if err := s.SetThreshold(ctx, "u1", 55); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if err := s.SetThreshold(ctx, "u1", 150); err == nil {
		t.Error("SetThreshold(150) should fail")
	}
	if err := s.SetKeywords(ctx, "u1", []string{"rust"}, nil); err != nil {
		t.Fatalf("SetKeywords: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active || got.Threshold != 55 {
		t.Errorf("profile = active=%v threshold=%d, want paused/55", got.Active, got.Threshold)
	}
	if len(got.RequiredKeywords) != 1 || got.RequiredKeywords[0] != "rust" {
		t.Errorf("RequiredKeywords = %v, want [rust]", got.RequiredKeywords)
	}

	// Setters on a missing user fail.
	if err := s.SetActive(ctx, "ghost", true); err == nil {
		t.Error("SetActive on missing user should fail")
	}

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "u1"); err == nil {
		t.Error("Get after Delete should fail")
	}
}

func TestDocumentRoundTripEncrypted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, testProfile("u1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	const cv = "Senior Go engineer, 8 years of backend work."
	if err := s.SetDocument(ctx, "u1", cv); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}

	got, err := s.Document(ctx, "u1")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if got != cv {
		t.Errorf("Document = %q, want %q", got, cv)
	}

	// The stored blob must not contain the plaintext.
	var blob []byte
	if err := s.db.QueryRow("SELECT cv FROM documents WHERE user_id = ?", "u1").Scan(&blob); err != nil {
		t.Fatalf("reading raw blob: %v", err)
	}
	if bytes.Contains(blob, []byte("Go engineer")) {
		t.Error("document stored in plaintext despite vault")
	}
}

func TestDocumentMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Document(context.Background(), "u1")
	if !errors.Is(err, model.ErrNoDocument) {
		t.Fatalf("error = %v, want ErrNoDocument", err)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, testProfile("u1")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("Snapshot len = %d, want 1", len(snap))
	}

	// Mutating the snapshot must not leak anywhere.
	snap[0].RequiredKeywords[0] = "mutated"
	snap[0].Threshold = 1

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RequiredKeywords[0] != "go" || got.Threshold != 70 {
		t.Errorf("stored profile changed after snapshot mutation: %+v", got)
	}
}
