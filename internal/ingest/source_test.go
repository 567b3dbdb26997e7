package ingest

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.ndjson")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceReadsRecords(t *testing.T) {
	path := writeSourceFile(t, `{"source_id":"chan","item_id":"1","text":"first"}

{"source_id":"chan","item_id":"2","text":"second"}
`)

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Close()

	first, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.ItemID != "1" || first.Text != "first" {
		t.Errorf("first record = %+v", first)
	}

	// Blank line is skipped.
	second, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second.ItemID != "2" {
		t.Errorf("second record = %+v", second)
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("error at end = %v, want io.EOF", err)
	}
}

func TestFileSourceMalformedLineDoesNotEndStream(t *testing.T) {
	path := writeSourceFile(t, `{"source_id":"chan","item_id":"1","text":"ok"}
this is not json
{"source_id":"chan","item_id":"3","text":"also ok"}
`)

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Close()

	if _, err := src.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}

	_, err = src.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("malformed line error = %v, want decode error", err)
	}
	if errors.Is(err, ErrStreamFailed) {
		t.Fatalf("decode error = %v, must not be a stream failure", err)
	}

	rec, err := src.Next()
	if err != nil {
		t.Fatalf("Next after bad line: %v", err)
	}
	if rec.ItemID != "3" {
		t.Errorf("record after bad line = %+v", rec)
	}

	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("error at end = %v, want io.EOF", err)
	}
}

func TestFileSourceOversizedLineIsStreamFailure(t *testing.T) {
	// One line over the scanner cap kills the scanner for good; the error
	// must be marked as a stream failure so callers stop reading.
	path := writeSourceFile(t, strings.Repeat("x", 5*1024*1024)+"\n")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	defer src.Close()

	_, err = src.Next()
	if !errors.Is(err, ErrStreamFailed) {
		t.Fatalf("oversized line error = %v, want ErrStreamFailed", err)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "nope.ndjson")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
