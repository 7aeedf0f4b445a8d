package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobsonar/internal/config"
	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
	"jobsonar/pkg/utils"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxFullTextLength    = 10000
	minDescriptionLength = 100
)

// platformSelectors maps known job platforms to their CSS selectors
var platformSelectors = map[string]struct {
	title        string
	description  string
	requirements string
}{
	"lever.co": {
		title:        ".posting-headline h2",
		description:  ".section-wrapper",
		requirements: ".posting-requirements",
	},
	"greenhouse.io": {
		title:        ".app-title",
		description:  "#content",
		requirements: "#content",
	},
	"workable.com": {
		title:        "[data-ui='job-title']",
		description:  "[data-ui='job-description']",
		requirements: "[data-ui='job-requirements']",
	},
	"breezy.hr": {
		title:        ".position-title",
		description:  ".description",
		requirements: ".description",
	},
	"ashbyhq.com": {
		title:        "h1",
		description:  "[data-testid='job-description']",
		requirements: "[data-testid='job-description']",
	},
}

var titleFallbackSelectors = []string{
	"h1.job-title",
	"h1.posting-title",
	"h1[class*='title']",
	".job-title",
	".position-title",
	"h1",
}

var descriptionFallbackSelectors = []string{
	".job-description",
	".description",
	"[class*='description']",
	"article",
	".content",
	"main",
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// StaticScraper fetches application pages with plain HTTP and extracts
// content with CSS selectors. Pages behind logins or heavy JS need the
// firecrawl engine instead.
type StaticScraper struct {
	config  *config.Config
	client  *http.Client
	limiter *RateLimiter
	logger  logging.Logger
}

// NewStaticScraper creates a new static scraper instance
func NewStaticScraper(cfg *config.Config) *StaticScraper {
	return &StaticScraper{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Scraper.RequestTimeout,
		},
		limiter: NewRateLimiter(cfg.Scraper.MinRequestInterval),
		logger:  logging.GetGlobalLogger(),
	}
}

// ScrapePage fetches an application page and extracts its content
func (s *StaticScraper) ScrapePage(ctx context.Context, pageURL string) (*models.ScrapedPage, error) {
	domain, err := hostOf(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	if s.isBlockedDomain(domain) {
		return nil, fmt.Errorf("%w: %s", utils.ErrBlockedDomain, domain)
	}

	if err := s.limiter.Wait(ctx, domain); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", domain, err)
	}

	html, err := s.fetch(ctx, pageURL)
	if err != nil {
		s.limiter.RecordFailure(domain)
		return nil, err
	}
	s.limiter.RecordSuccess(domain)

	page, err := s.parse(html, pageURL, domain)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Scraped application page", map[string]interface{}{
		"url":       pageURL,
		"full_text": len(page.FullText),
	})
	return page, nil
}

func (s *StaticScraper) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.Scraper.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") {
		return "", fmt.Errorf("%w: %s", utils.ErrNotHTML, contentType)
	}

	limit := s.config.Scraper.MaxBodySize
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return "", fmt.Errorf("%w: %s", utils.ErrBodyTooLarge, pageURL)
	}

	return string(body), nil
}

func (s *StaticScraper) parse(html, pageURL, domain string) (*models.ScrapedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	page := &models.ScrapedPage{URL: pageURL}

	if selectors, ok := platformFor(domain); ok {
		page.Title = selectText(doc, selectors.title, maxTitleLength)
		page.Description = selectText(doc, selectors.description, maxDescriptionLength)
		page.Requirements = selectText(doc, selectors.requirements, maxDescriptionLength)
	}

	if page.Title == "" {
		for _, selector := range titleFallbackSelectors {
			if text := selectText(doc, selector, maxTitleLength); text != "" {
				page.Title = text
				break
			}
		}
	}

	if page.Description == "" {
		for _, selector := range descriptionFallbackSelectors {
			text := selectText(doc, selector, maxDescriptionLength)
			if len(text) > minDescriptionLength {
				page.Description = text
				break
			}
		}
	}

	page.FullText = extractFullText(doc)
	return page, nil
}

// selectText returns the cleaned text of the first matching element,
// empty when nothing matches or the text exceeds maxLen
func selectText(doc *goquery.Document, selector string, maxLen int) string {
	if selector == "" {
		return ""
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	text := cleanText(sel.Text())
	if text == "" {
		return ""
	}
	if len(text) > maxLen {
		text = utils.Truncate(text, maxLen)
	}
	return text
}

func extractFullText(doc *goquery.Document) string {
	for _, selector := range []string{"main", "article", "body"} {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := cleanText(sel.Text())
		if text != "" {
			if len(text) > maxFullTextLength {
				text = utils.Truncate(text, maxFullTextLength)
			}
			return text
		}
	}
	return ""
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

func (s *StaticScraper) isBlockedDomain(domain string) bool {
	for _, blocked := range s.config.Scraper.BlockedDomains {
		if strings.Contains(domain, strings.ToLower(blocked)) {
			return true
		}
	}
	return false
}

func platformFor(domain string) (struct{ title, description, requirements string }, bool) {
	for platform, selectors := range platformSelectors {
		if strings.Contains(domain, platform) {
			return selectors, true
		}
	}
	return struct{ title, description, requirements string }{}, false
}

func hostOf(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("no host in url")
	}
	return host, nil
}

// Cleanup releases any resources used by the scraper
func (s *StaticScraper) Cleanup() {
	s.limiter.Cleanup()
	s.client.CloseIdleConnections()
}

// IsHealthy returns true if the scraper is ready to fetch pages
func (s *StaticScraper) IsHealthy() bool {
	return s.client != nil
}
