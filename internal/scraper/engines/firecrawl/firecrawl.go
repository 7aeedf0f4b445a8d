package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"jobsonar/internal/config"
	"jobsonar/internal/logging"
	"jobsonar/pkg/models"
)

const maxRetries = 3

// FirecrawlScraper fetches application pages through the Firecrawl API.
// Used for pages the static engine cannot render.
type FirecrawlScraper struct {
	config *config.Config
	app    *firecrawl.FirecrawlApp
	logger logging.Logger
}

// NewFirecrawlScraper creates a new Firecrawl scraper instance
func NewFirecrawlScraper(cfg *config.Config) *FirecrawlScraper {
	logger := logging.GetGlobalLogger()

	app, err := firecrawl.NewFirecrawlApp(cfg.Firecrawl.APIKey, cfg.Firecrawl.APIURL)
	if err != nil {
		logger.Error("Failed to initialize Firecrawl", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	logger.Info("Firecrawl scraper initialized", map[string]interface{}{
		"api_url": cfg.Firecrawl.APIURL,
	})

	return &FirecrawlScraper{
		config: cfg,
		app:    app,
		logger: logger,
	}
}

// ScrapePage fetches an application page and extracts its content
func (f *FirecrawlScraper) ScrapePage(ctx context.Context, url string) (*models.ScrapedPage, error) {
	params := &firecrawl.ScrapeParams{
		Formats: []string{"markdown"},
	}

	var result *firecrawl.FirecrawlDocument
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err = f.app.ScrapeURL(url, params)
		if err == nil {
			break
		}

		f.logger.Warn("Firecrawl scrape attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     url,
			"error":   err.Error(),
		})

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("firecrawl scraping failed after %d attempts: %w", maxRetries, err)
	}
	if result == nil {
		return nil, fmt.Errorf("no result returned from firecrawl")
	}

	content := result.Markdown
	if content == "" {
		content = result.HTML
	}
	if content == "" {
		return nil, fmt.Errorf("no content in firecrawl response for %s", url)
	}

	page := &models.ScrapedPage{
		FullText: content,
		URL:      url,
	}

	f.logger.Info("Scraped application page via firecrawl", map[string]interface{}{
		"url":       url,
		"full_text": len(content),
	})
	return page, nil
}

// Cleanup releases any resources used by the scraper
func (f *FirecrawlScraper) Cleanup() {}

// IsHealthy returns true if the scraper is ready to fetch pages
func (f *FirecrawlScraper) IsHealthy() bool {
	return f.app != nil && f.config.Firecrawl.APIKey != ""
}
