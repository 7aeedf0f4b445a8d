package scraper

import (
	"context"

	"jobsonar/pkg/models"
)

// Scraper defines the interface for all scraping engines
type Scraper interface {
	// ScrapePage fetches an application page and extracts its content
	ScrapePage(ctx context.Context, url string) (*models.ScrapedPage, error)

	// Cleanup releases any resources used by the scraper
	Cleanup()

	// IsHealthy returns true if the scraper is ready to fetch pages
	IsHealthy() bool
}

// ScraperFactory creates scrapers based on engine type
type ScraperFactory interface {
	// CreateScraper creates a new scraper instance for the given engine
	CreateScraper(engine string) (Scraper, error)

	// GetSupportedEngines returns a list of supported engine types
	GetSupportedEngines() []string
}
