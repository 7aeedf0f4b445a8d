package scraper

import (
	"fmt"

	"jobsonar/internal/config"
	"jobsonar/internal/scraper/engines/firecrawl"
	"jobsonar/internal/scraper/engines/static"
)

// DefaultScraperFactory implements ScraperFactory
type DefaultScraperFactory struct {
	config *config.Config
}

// NewScraperFactory creates a new scraper factory
func NewScraperFactory(cfg *config.Config) ScraperFactory {
	return &DefaultScraperFactory{config: cfg}
}

// CreateScraper creates a new scraper instance for the given engine
func (f *DefaultScraperFactory) CreateScraper(engine string) (Scraper, error) {
	switch engine {
	case "static", "":
		return static.NewStaticScraper(f.config), nil
	case "firecrawl":
		scraper := firecrawl.NewFirecrawlScraper(f.config)
		if scraper == nil {
			return nil, fmt.Errorf("failed to initialize firecrawl scraper")
		}
		return scraper, nil
	default:
		return nil, fmt.Errorf("unsupported scraping engine: %s", engine)
	}
}

// GetSupportedEngines returns a list of supported engine types
func (f *DefaultScraperFactory) GetSupportedEngines() []string {
	return []string{"static", "firecrawl"}
}
