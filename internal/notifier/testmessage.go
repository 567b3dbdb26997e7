package notifier

import (
	"context"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// SendTestMessage sends a dummy alert to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier, userID string) error {
	posting := model.JobPosting{
		Title:    "Test Notification — Integration Verified",
		Company:  "JobBot",
		Location: "Everywhere",
		Remote:   model.Yes,
		Skills:   map[string]bool{"go": true},
		ApplyURL: "https://golang.org/doc",
		Source: model.Message{
			Key:        model.ItemKey{SourceID: "test", ItemID: "001"},
			Text:       "test message",
			ReceivedAt: time.Now(),
		},
	}
	return n.Notify(ctx, userID, posting, 100)
}
