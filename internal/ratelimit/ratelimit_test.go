package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFirstRequestDoesNotWait(t *testing.T) {
	r := NewHostLimiter(time.Second)

	start := time.Now()
	if err := r.Wait(context.Background(), "jobs.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first request waited %v, want no wait", elapsed)
	}
}

func TestSecondRequestWaits(t *testing.T) {
	r := NewHostLimiter(150 * time.Millisecond)

	if err := r.Wait(context.Background(), "jobs.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	start := time.Now()
	if err := r.Wait(context.Background(), "jobs.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("second request waited only %v, want ~150ms", elapsed)
	}
}

func TestDifferentHostsIndependent(t *testing.T) {
	r := NewHostLimiter(time.Second)

	if err := r.Wait(context.Background(), "a.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	start := time.Now()
	if err := r.Wait(context.Background(), "b.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different host waited %v, want no wait", elapsed)
	}
}

func TestWaitCancelledContext(t *testing.T) {
	r := NewHostLimiter(time.Minute)

	if err := r.Wait(context.Background(), "jobs.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Wait(ctx, "jobs.example.com"); err == nil {
		t.Error("expected error when context is cancelled during wait")
	}
}
