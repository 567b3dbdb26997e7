package model

import "time"

// RawMessage is a message record as delivered by the channel transport.
// Immutable once produced.
type RawMessage struct {
	SourceID   string    `json:"source_id"`
	ItemID     string    `json:"item_id"`
	SourceName string    `json:"source_name,omitempty"`
	Text       string    `json:"text"`
	URL        string    `json:"url,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ItemKey identifies a single source message. It is the dedup unit:
// unique per channel+message, stable across redeliveries.
type ItemKey struct {
	SourceID string
	ItemID   string
}

func (k ItemKey) String() string {
	return k.SourceID + "/" + k.ItemID
}

// Message is the normalized form of a RawMessage. EnrichedText carries the
// original text plus any detail fetched from an embedded link; it equals
// Text when enrichment was skipped or failed.
type Message struct {
	Key          ItemKey
	SourceName   string
	Text         string
	EnrichedText string
	URL          string
	ReceivedAt   time.Time
}

// MessageLink returns a link to the original message when the source is a
// public channel, or empty when none can be built.
func (m Message) MessageLink() string {
	if m.SourceName == "" {
		return ""
	}
	return "https://t.me/" + m.SourceName + "/" + m.Key.ItemID
}
