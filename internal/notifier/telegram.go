// Package notifier delivers alerts for matched (job, user) pairs.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cryoneth/job-bot-telegram/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends job alerts as direct messages via the Telegram
// Bot API. The ledger user ID doubles as the Telegram chat ID.
type TelegramNotifier struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier returns a notifier that posts alerts through the
// given bot token.
func NewTelegramNotifier(token string, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:    telegramAPIBase,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}

// Notify formats the posting as a Markdown alert and sends it to the
// user's chat. A 429 from Telegram is retried once after the indicated
// delay; any other failure is returned so the caller does not record
// the pair as alerted.
func (t *TelegramNotifier) Notify(ctx context.Context, userID string, posting model.JobPosting, score int) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                userID,
		Text:                  buildAlertText(posting, score),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	resp, retryAfter, err := t.send(ctx, body)
	if err != nil {
		return err
	}
	if resp.OK {
		t.logger.Info("telegram alert sent", "user", userID, "title", posting.Title, "score", score)
		return nil
	}

	if retryAfter > 0 {
		t.logger.Warn("telegram rate limited, retrying", "user", userID, "retry_after_secs", int(retryAfter.Seconds()))
		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return ctx.Err()
		}

		resp, _, err = t.send(ctx, body)
		if err != nil {
			return fmt.Errorf("telegram retry: %w", err)
		}
		if resp.OK {
			t.logger.Info("telegram alert sent", "user", userID, "title", posting.Title, "retried", true)
			return nil
		}
	}

	return fmt.Errorf("telegram rejected message for %s: %s", userID, resp.Description)
}

func (t *TelegramNotifier) send(ctx context.Context, body []byte) (sendMessageResponse, time.Duration, error) {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return sendMessageResponse{}, 0, fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return sendMessageResponse{}, 0, fmt.Errorf("post to telegram: %w", err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return sendMessageResponse{}, 0, fmt.Errorf("read telegram response: %w", err)
	}

	var resp sendMessageResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return sendMessageResponse{}, 0, fmt.Errorf("parse telegram response (HTTP %d): %w", httpResp.StatusCode, err)
	}

	var retryAfter time.Duration
	if httpResp.StatusCode == http.StatusTooManyRequests && resp.Parameters != nil {
		retryAfter = time.Duration(resp.Parameters.RetryAfter) * time.Second
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
	}
	return resp, retryAfter, nil
}

// buildAlertText renders the Markdown alert body.
func buildAlertText(p model.JobPosting, score int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 *New Job Match!* (Score: %d/100)\n\n", score)

	if p.Title != "" {
		fmt.Fprintf(&b, "*Title:* %s\n", escapeMarkdown(p.Title))
	}
	if p.Company != "" {
		fmt.Fprintf(&b, "*Company:* %s\n", escapeMarkdown(p.Company))
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "*Location:* %s\n", escapeMarkdown(p.Location))
	}
	if p.Remote != model.Unknown {
		fmt.Fprintf(&b, "*Remote:* %s\n", p.Remote)
	}
	if p.Seniority != model.SeniorityUnknown && p.Seniority != "" {
		fmt.Fprintf(&b, "*Seniority:* %s\n", p.Seniority)
	}
	if p.Salary != "" {
		fmt.Fprintf(&b, "*Salary:* %s\n", escapeMarkdown(p.Salary))
	}
	if len(p.Skills) > 0 {
		skills := make([]string, 0, len(p.Skills))
		for s := range p.Skills {
			skills = append(skills, s)
		}
		sort.Strings(skills)
		fmt.Fprintf(&b, "*Skills:* %s\n", escapeMarkdown(strings.Join(skills, ", ")))
	}

	if p.ApplyURL != "" {
		fmt.Fprintf(&b, "\n🔗 [Apply here](%s)\n", p.ApplyURL)
	}
	if link := p.Source.MessageLink(); link != "" {
		fmt.Fprintf(&b, "📨 [Original message](%s)\n", link)
	}

	return b.String()
}

// escapeMarkdown neutralizes the characters Telegram's legacy Markdown
// mode treats as formatting.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return replacer.Replace(s)
}
