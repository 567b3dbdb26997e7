package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

var (
	urlRegex    = regexp.MustCompile(`https?://[^\s<>\[\]()"']+`)
	emailRegex  = regexp.MustCompile(`\S+@\S+\.\S+`)
	numberRegex = regexp.MustCompile(`\b\d+\b`)
)

// Normalize converts a raw channel record into a canonical Message. It is
// total: absent or malformed fields map to empty values, never errors, and
// the resulting item key is stable across repeated calls.
func Normalize(raw model.RawMessage) model.Message {
	text := strings.TrimSpace(raw.Text)

	url := strings.TrimSpace(raw.URL)
	if url == "" {
		// Fall back to the first link embedded in the text.
		url = urlRegex.FindString(text)
	}

	received := raw.ReceivedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}

	return model.Message{
		Key: model.ItemKey{
			SourceID: strings.TrimSpace(raw.SourceID),
			ItemID:   strings.TrimSpace(raw.ItemID),
		},
		SourceName:   strings.TrimSpace(raw.SourceName),
		Text:         text,
		EnrichedText: text,
		URL:          url,
		ReceivedAt:   received,
	}
}

// ContentHash computes a normalized SHA-256 over the message text so that
// reposts of the same job across channels hash identically. Numbers are
// dropped because salary figures and dates vary between reposts; URL-only
// messages hash their normalized URLs instead.
func ContentHash(text string) string {
	normalized := normalizeForHash(text)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func normalizeForHash(text string) string {
	lower := strings.ToLower(text)

	urls := urlRegex.FindAllString(lower, -1)

	stripped := urlRegex.ReplaceAllString(lower, "")
	stripped = emailRegex.ReplaceAllString(stripped, "")
	stripped = numberRegex.ReplaceAllString(stripped, "")
	stripped = strings.Join(strings.Fields(stripped), " ")

	if len(stripped) < 20 && len(urls) > 0 {
		normalized := make([]string, 0, len(urls))
		for _, u := range urls {
			if i := strings.IndexByte(u, '?'); i >= 0 {
				u = u[:i]
			}
			normalized = append(normalized, strings.TrimRight(u, "/"))
		}
		return strings.Join(normalized, " ")
	}

	return stripped
}
