package enrich

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFetcher() *PageFetcher {
	return NewPageFetcher(
		&http.Client{Timeout: 5 * time.Second},
		ratelimit.NewHostLimiter(0),
	)
}

func msgWithURL(url string) model.Message {
	return model.Message{
		Key:          model.ItemKey{SourceID: "chan", ItemID: "1"},
		Text:         "Backend Engineer wanted",
		EnrichedText: "Backend Engineer wanted",
		URL:          url,
	}
}

func TestFetchDetailExtractsMainContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><head><script>junk()</script></head>
			<body><nav>menu</nav><main>We are hiring a Senior Go Engineer.
			Requirements: Go, Postgres.</main><footer>legal</footer></body></html>`)
	}))
	defer srv.Close()

	text, err := newFetcher().FetchDetail(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}
	if !strings.Contains(text, "Senior Go Engineer") {
		t.Errorf("extracted text missing body content: %q", text)
	}
	if strings.Contains(text, "junk()") || strings.Contains(text, "menu") {
		t.Errorf("extracted text contains chrome/script content: %q", text)
	}
}

func TestFetchDetailNonHTMLRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, "%PDF-1.4")
	}))
	defer srv.Close()

	if _, err := newFetcher().FetchDetail(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-HTML content type")
	}
}

func TestFetchDetailStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newFetcher().FetchDetail(context.Background(), srv.URL)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", httpErr.StatusCode)
	}
}

func TestEnrichRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body><main>Full job description with many details about the role and requirements.</main></body></html>")
	}))
	defer srv.Close()

	e := NewEnricher(newFetcher(), 5*time.Second, discardLogger())
	got := e.Enrich(context.Background(), msgWithURL(srv.URL))

	if calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2 (one retry)", calls.Load())
	}
	if !strings.Contains(got.EnrichedText, "Full job description") {
		t.Errorf("EnrichedText not extended: %q", got.EnrichedText)
	}
	if !strings.HasPrefix(got.EnrichedText, got.Text) {
		t.Errorf("EnrichedText should start with original text")
	}
}

func TestEnrichDegradesOnPersistentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEnricher(newFetcher(), 5*time.Second, discardLogger())
	msg := msgWithURL(srv.URL)
	got := e.Enrich(context.Background(), msg)

	if got.EnrichedText != msg.Text {
		t.Errorf("EnrichedText = %q, want unchanged original text", got.EnrichedText)
	}
}

func TestEnrichSkipsBlockedDomain(t *testing.T) {
	e := NewEnricher(newFetcher(), time.Second, discardLogger())
	msg := msgWithURL("https://www.linkedin.com/jobs/view/123")
	got := e.Enrich(context.Background(), msg)

	if got.EnrichedText != msg.Text {
		t.Errorf("blocked domain must not be fetched")
	}
}

func TestEnrichNoURLIsNoop(t *testing.T) {
	e := NewEnricher(newFetcher(), time.Second, discardLogger())
	msg := model.Message{Text: "hello", EnrichedText: "hello"}
	if got := e.Enrich(context.Background(), msg); got.EnrichedText != "hello" {
		t.Errorf("EnrichedText = %q, want %q", got.EnrichedText, "hello")
	}
}
