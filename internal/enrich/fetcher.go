package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/ratelimit"
)

const (
	// maxBodyBytes caps how much of a detail page is read.
	maxBodyBytes = 5 * 1024 * 1024

	// maxDetailChars caps the extracted text appended to a message.
	maxDetailChars = 10000

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
)

// blockedDomains require a login or actively block scrapers; fetching them
// wastes the retry budget.
var blockedDomains = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"x.com",
	"twitter.com",
}

// platformSelectors maps known job platforms to the CSS selector holding
// the posting body.
var platformSelectors = map[string]string{
	"lever.co":      ".section-wrapper",
	"greenhouse.io": "#content",
	"workable.com":  "[data-ui='job-description']",
	"breezy.hr":     ".description",
	"ashbyhq.com":   "[data-testid='job-description']",
}

// PageFetcher fetches a job detail page and extracts its text content.
// Implements model.DetailFetcher.
type PageFetcher struct {
	client  *http.Client
	limiter *ratelimit.HostLimiter
}

// NewPageFetcher creates a fetcher using the given HTTP client. The limiter
// keeps requests to the same host at least its configured interval apart.
func NewPageFetcher(client *http.Client, limiter *ratelimit.HostLimiter) *PageFetcher {
	return &PageFetcher{client: client, limiter: limiter}
}

// FetchDetail downloads the page at rawURL and returns its extracted text.
// A non-2xx status is returned as *model.HTTPError so the retry layer can
// classify it.
func (f *PageFetcher) FetchDetail(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse detail url: %w", err)
	}
	host := strings.ToLower(u.Hostname())

	if err := f.limiter.Wait(ctx, host); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("detail fetch for %s: %w", host, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("detail fetch for %s: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("detail fetch for %s", host),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("detail fetch for %s: not HTML (%s)", host, contentType)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("parse detail page for %s: %w", host, err)
	}

	return extractText(doc, host), nil
}

// extractText pulls the posting body out of the parsed page: a known
// platform selector when the host matches one, otherwise main/article/body
// with chrome elements removed.
func extractText(doc *goquery.Document, host string) string {
	doc.Find("script, style, nav, footer, header, aside").Remove()

	for platform, selector := range platformSelectors {
		if !strings.Contains(host, platform) {
			continue
		}
		if sel := doc.Find(selector); sel.Length() > 0 {
			return cleanText(sel.Text())
		}
	}

	for _, selector := range []string{"main", "article", "body"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := cleanText(sel.Text()); text != "" {
				return text
			}
		}
	}

	return cleanText(doc.Text())
}

func cleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxDetailChars {
		text = text[:maxDetailChars]
	}
	return text
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// BlockedDomain reports whether rawURL points at a domain known to refuse
// scraping.
func BlockedDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, blocked := range blockedDomains {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}
