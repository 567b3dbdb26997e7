package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// ErrStreamFailed wraps stream-level read failures. Unlike a per-record
// decode error, the stream cannot recover; callers should stop reading.
var ErrStreamFailed = errors.New("source stream failed")

// Source is the transport boundary: a stream of raw message records with
// at-least-once delivery. Duplicates are expected and handled downstream
// by the ledger. Next returns io.EOF when the stream ends.
type Source interface {
	Next() (model.RawMessage, error)
	Close() error
}

// FileSource replays newline-delimited JSON message records from a file or
// stdin. Used by the replay command and as the default local transport.
type FileSource struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	line    int
}

// NewFileSource opens path for replay. "-" means stdin.
func NewFileSource(path string) (*FileSource, error) {
	var rc io.ReadCloser
	if path == "-" {
		rc = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open source file: %w", err)
		}
		rc = f
	}

	scanner := bufio.NewScanner(rc)
	// Enriched messages can run long; one line is capped at 4 MiB. A line
	// over the cap is a stream failure, not a skippable record.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	return &FileSource{rc: rc, scanner: scanner}, nil
}

// Next returns the next record. Blank lines are skipped; a malformed line
// is an error for that record only, and the stream continues afterwards.
func (s *FileSource) Next() (model.RawMessage, error) {
	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw model.RawMessage
		if err := json.Unmarshal(line, &raw); err != nil {
			return model.RawMessage{}, fmt.Errorf("decode record at line %d: %w", s.line, err)
		}
		return raw, nil
	}

	if err := s.scanner.Err(); err != nil {
		return model.RawMessage{}, fmt.Errorf("read source: %v: %w", err, ErrStreamFailed)
	}
	return model.RawMessage{}, io.EOF
}

func (s *FileSource) Close() error {
	return s.rc.Close()
}
